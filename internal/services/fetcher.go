package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/config"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/events"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/logger"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/metrics"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads pending detail pages. Requests run concurrently up to
// the configured limit and share one rate limiter, so the board sees a slow
// steady crawl rather than a burst per run.
type Fetcher struct {
	httpClient HTTPClient
	limiter    *rate.Limiter
	pages      *repositories.DetailPages
	bus        EventBus.Bus
	config     config.FetcherConfig
	counter    *RunCounter
}

func NewFetcher(pages *repositories.DetailPages, bus EventBus.Bus,
	cfg config.FetcherConfig, counter *RunCounter) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), 1),
		pages:      pages,
		bus:        bus,
		config:     cfg,
		counter:    counter,
	}
}

func (f *Fetcher) SetHTTPClient(client HTTPClient) {
	f.httpClient = client
}

// Run fetches every page the store marks as pending and records the outcome.
func (f *Fetcher) Run(ctx context.Context) error {

	pending, err := f.pages.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	log.Infof("fetching %d pending detail pages", len(pending))

	semaphore := make(chan struct{}, f.config.MaxConcurrentRequests)
	var wg sync.WaitGroup

	for _, page := range pending {
		if err = ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(url string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			f.fetchOne(ctx, url)
		}(page.URL)
	}

	wg.Wait()
	return err
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) {

	if err := f.limiter.Wait(ctx); err != nil {
		return
	}

	body, statusCode := f.fetch(ctx, url)

	if err := f.pages.RecordFetch(ctx, url, body, statusCode); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record fetch of %s: %v", url, err)
		return
	}

	f.counter.Add("WEB_URL updated")
	metrics.FetchedPagesCounter.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	f.bus.Publish(events.PageFetchedTopic, events.PageFetched{URL: url, StatusCode: statusCode})
}

// fetch performs one HTTP GET. The returned body is either the page content
// or a short failure description; statusCode 0 marks a transport failure.
func (f *Fetcher) fetch(ctx context.Context, url string) (string, int) {

	requestCtx, cancel := context.WithTimeout(ctx, f.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Sprintf("Unknown error fetching URL %s: %v", url, err), 0
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
			Warnf("fetch of %s failed: %v", url, err)
		return fmt.Sprintf("Connection error/timeout: %s", url), 0
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Unknown error fetching URL %s: %v", url, err), 0
	}
	body := strings.TrimSpace(string(raw))

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error for URL %s: %d", url, resp.StatusCode), resp.StatusCode
	}

	// The board answers 200 with a block notice once it throttles the
	// crawler's address; store it as 429 so the page stays pending.
	if strings.Contains(body, "Your IP address") && strings.Contains(body, "has been blocked") {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
			Warnf("fetch of %s answered with an IP block notice", url)
		return fmt.Sprintf("Error for URL %s: %d", url, http.StatusTooManyRequests),
			http.StatusTooManyRequests
	}

	return body, resp.StatusCode
}
