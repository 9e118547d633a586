package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/channels"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/config"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/logger"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/metrics"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/services"
)

type pipeline struct {
	ingest    *services.Ingest
	fetcher   *services.Fetcher
	webParser *services.WebParser
	counter   *services.RunCounter

	chatSource channels.ChatSource
	mailSource channels.MailSource
}

func buildPipeline(cfg *config.Config, cat *catalog.Catalog,
	dbContext *repositories.DbContext, bus EventBus.Bus) *pipeline {

	rawMessages := repositories.NewRawMessagesRepository(dbContext.DB)
	detailPages := repositories.NewDetailPagesRepository(dbContext.DB)
	attrValues := repositories.NewCachedAttributeValues(
		repositories.NewAttributeValuesRepository(dbContext.DB))

	counter := services.NewRunCounter()
	startDate := cfg.Ingest.StartTime()

	webParser, err := services.NewWebParser(bus, dbContext.DB, cat, detailPages,
		attrValues, startDate, counter)
	if err != nil {
		log.Fatalf("can't create web parser: %v", err)
	}

	p := &pipeline{
		ingest:    services.NewIngest(dbContext.DB, cat, attrValues, rawMessages, startDate, counter),
		fetcher:   services.NewFetcher(detailPages, bus, cfg.Fetcher, counter),
		webParser: webParser,
		counter:   counter,
	}

	if cfg.Channels.TelegramEnabled() {
		p.chatSource, err = channels.NewTelegramSource(cfg.Channels.TgToken, cfg.Channels.TgChatID)
		if err != nil {
			log.Fatalf("can't create telegram source: %v", err)
		}
	}
	if cfg.Channels.MailboxEnabled() {
		p.mailSource = channels.NewFileMailbox(cfg.Channels.MailboxDir)
	}
	return p
}

func (p *pipeline) run(ctx context.Context) {

	startTime := time.Now()
	log.Infof("running ingestion at %v", startTime)

	if p.chatSource != nil {
		if err := p.ingest.RunChat(ctx, p.chatSource); err != nil {
			log.Errorf("chat ingestion failed: %v", err)
		}
	}
	if p.mailSource != nil {
		if err := p.ingest.RunMail(ctx, p.mailSource); err != nil {
			log.Errorf("mail ingestion failed: %v", err)
		}
	}
	if err := p.fetcher.Run(ctx); err != nil {
		log.Errorf("page fetching failed: %v", err)
	}
	if err := p.webParser.Run(ctx); err != nil {
		log.Errorf("page parsing failed: %v", err)
	}

	executionTime := time.Since(startTime)
	metrics.RunDuration.Observe(executionTime.Seconds())
	log.Infof("ingestion ended after %v", executionTime)
	p.counter.Report()
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Ingest.MetricsPort)

	cat, err := catalog.Load(cfg.Ingest.CatalogFile)
	if err != nil {
		log.Fatalf("can't load parsing catalog: %v", err)
	}

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	p := buildPipeline(cfg, cat, dbContext, bus)

	p.run(ctx)
	if cfg.Ingest.RunOnce {
		return
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc("@every "+cfg.Ingest.RunInterval.String(), func() {
		p.run(ctx)
	})
	if err != nil {
		log.Fatalf("can't schedule ingestion runs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	<-ctx.Done()
	log.Info("Shutting down...")
}
