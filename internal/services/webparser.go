package services

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/events"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/logger"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/metrics"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/parsers"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
)

// WebParser extracts vacancy attributes out of cached detail pages. Besides
// the batch Run pass it listens for fetch completions, so a page parsed soon
// after its body arrives instead of waiting for the next run.
type WebParser struct {
	db         *gorm.DB
	pages      *repositories.DetailPages
	attrValues attributeInterner
	parser     *parsers.WebVacancyParser
	horizon    time.Time
	counter    *RunCounter
}

func NewWebParser(bus EventBus.Bus, db *gorm.DB, cat *catalog.Catalog,
	pages *repositories.DetailPages, attrValues attributeInterner,
	horizon time.Time, counter *RunCounter) (*WebParser, error) {

	w := &WebParser{
		db:         db,
		pages:      pages,
		attrValues: attrValues,
		parser:     parsers.NewWebVacancyParser(cat),
		horizon:    horizon,
		counter:    counter,
	}
	err := bus.Subscribe(events.PageFetchedTopic, w.onPageFetched)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WebParser) onPageFetched(event events.PageFetched) {

	if event.StatusCode != http.StatusOK {
		return
	}

	page, err := w.pages.GetByURL(context.Background(), event.URL)
	if err != nil || page == nil {
		return
	}
	if err = w.parsePage(context.Background(), *page); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeParser).
			Errorf("failed to parse fetched page %s: %v", event.URL, err)
	}
}

// Run parses every cached page that is due: never parsed, refetched since
// the last parse, or announced on or after the horizon date.
func (w *WebParser) Run(ctx context.Context) error {

	pages, err := w.pages.EligibleForParse(ctx, w.horizon)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return nil
	}
	log.Infof("parsing %d cached detail pages", len(pages))

	for _, page := range pages {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = w.parsePage(ctx, page); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeParser).
				Errorf("failed to parse page %s: %v", page.URL, err)
		}
	}
	return nil
}

func (w *WebParser) parsePage(ctx context.Context, page entities.DetailPage) error {

	if page.HTML == nil {
		return nil
	}

	attrs := w.parser.Parse(*page.HTML)

	// The page body carries its own canonical link. When the tracked URL
	// was a redirecting alias, move the row over to the canonical one so
	// later announcements of either form land on the same record.
	if canonical := attrs.Get(entities.AttrURL); canonical != "" && canonical != page.URL {
		if err := w.repointURL(ctx, &page, canonical); err != nil {
			return err
		}
	}

	if page.VacancyID != nil {
		if err := w.storeAttributes(ctx, *page.VacancyID, attrs); err != nil {
			return err
		}
	}

	if err := w.pages.MarkParsed(ctx, page.ID); err != nil {
		return err
	}
	w.counter.Add("WEB_VACANCY_PARSED")
	metrics.VacanciesCounter.WithLabelValues(entities.ChannelWeb.Name(), "parsed").Inc()
	if attrs.Diagnostic != "" {
		w.counter.Add("WEB_ERR")
		metrics.ParsingErrorsCounter.WithLabelValues(entities.ChannelWeb.Name()).Inc()
	}
	return nil
}

func (w *WebParser) repointURL(ctx context.Context, page *entities.DetailPage, canonical string) error {

	existing, err := w.pages.GetByURL(ctx, canonical)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	err = w.db.WithContext(ctx).Model(&entities.DetailPage{}).
		Where("id = ?", page.ID).
		Update("url", canonical).Error
	if err == nil {
		page.URL = canonical
	}
	return err
}

func (w *WebParser) storeAttributes(ctx context.Context, vacancyID uint, attrs parsers.AttributeMap) error {

	err := w.db.WithContext(ctx).Model(&entities.Vacancy{}).
		Where("id = ?", vacancyID).
		Update("web_parse_note", attrs.Diagnostic).Error
	if err != nil {
		return err
	}

	ids := make([]entities.AttributeID, 0, len(attrs.Values))
	for id := range attrs.Values {
		if id != entities.AttrURL {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		valueID, err := w.attrValues.Intern(id, attrs.Values[id], entities.ChannelWeb)
		if err != nil {
			return err
		}
		if err = w.attrValues.LinkToVacancy(vacancyID, valueID); err != nil {
			return err
		}
	}
	return nil
}
