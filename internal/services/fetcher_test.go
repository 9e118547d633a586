package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/config"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/entities"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/events"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
)

type stubHTTPClient struct {
	mu       sync.Mutex
	response func(req *http.Request) (*http.Response, error)
	requests []*http.Request
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	return c.response(req)
}

func htmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testFetcherConfig() config.FetcherConfig {
	return config.FetcherConfig{
		RequestTimeout:        time.Second,
		MaxConcurrentRequests: 2,
		MaxRequestsPerSecond:  1000,
		UserAgent:             "test-agent",
	}
}

func newTestFetcher(dbContext *repositories.DbContext, client *stubHTTPClient) (*Fetcher, EventBus.Bus) {

	bus := EventBus.New()
	pages := repositories.NewDetailPagesRepository(dbContext.DB)
	fetcher := NewFetcher(pages, bus, testFetcherConfig(), NewRunCounter())
	fetcher.SetHTTPClient(client)
	return fetcher, bus
}

func createPage(t *testing.T, dbContext *repositories.DbContext, url string) {
	require.NoError(t, dbContext.DB.Create(&entities.DetailPage{URL: url}).Error)
}

func TestFetcherRun(t *testing.T) {

	dbContext := newTestDb(t)
	createPage(t, dbContext, "https://board.example/jobs/123")

	client := &stubHTTPClient{response: func(_ *http.Request) (*http.Response, error) {
		return htmlResponse(200, "<html>vacancy</html>"), nil
	}}
	fetcher, bus := newTestFetcher(dbContext, client)

	var fetched []events.PageFetched
	var mu sync.Mutex
	require.NoError(t, bus.Subscribe(events.PageFetchedTopic, func(e events.PageFetched) {
		mu.Lock()
		fetched = append(fetched, e)
		mu.Unlock()
	}))

	require.NoError(t, fetcher.Run(context.Background()))

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.First(&page).Error)
	require.NotNil(t, page.HTML)
	assert.Equal(t, "<html>vacancy</html>", *page.HTML)
	require.NotNil(t, page.StatusCode)
	assert.Equal(t, 200, *page.StatusCode)
	assert.Equal(t, 1, page.Attempts)
	assert.NotNil(t, page.LastCheck)

	require.Len(t, client.requests, 1)
	assert.Equal(t, "test-agent", client.requests[0].Header.Get("User-Agent"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetched, 1)
	assert.Equal(t, events.PageFetched{URL: "https://board.example/jobs/123", StatusCode: 200}, fetched[0])
	assert.Equal(t, 1, fetcher.counter.Get("WEB_URL updated"))
}

func TestFetcherRun_skipsCachedAndNotFound(t *testing.T) {

	dbContext := newTestDb(t)
	body, okStatus, goneStatus := "cached", 200, 404
	now := time.Now()
	require.NoError(t, dbContext.DB.Create(&entities.DetailPage{
		URL: "https://board.example/jobs/1", HTML: &body, StatusCode: &okStatus, LastCheck: &now,
	}).Error)
	require.NoError(t, dbContext.DB.Create(&entities.DetailPage{
		URL: "https://board.example/jobs/2", HTML: &body, StatusCode: &goneStatus, LastCheck: &now,
	}).Error)
	createPage(t, dbContext, "https://board.example/jobs/3")

	client := &stubHTTPClient{response: func(_ *http.Request) (*http.Response, error) {
		return htmlResponse(200, "fresh"), nil
	}}
	fetcher, _ := newTestFetcher(dbContext, client)

	require.NoError(t, fetcher.Run(context.Background()))
	require.Len(t, client.requests, 1)
	assert.Equal(t, "https://board.example/jobs/3", client.requests[0].URL.String())
}

func TestFetcherRun_transportError(t *testing.T) {

	dbContext := newTestDb(t)
	createPage(t, dbContext, "https://board.example/jobs/123")

	client := &stubHTTPClient{response: func(_ *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	fetcher, _ := newTestFetcher(dbContext, client)

	require.NoError(t, fetcher.Run(context.Background()))

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.First(&page).Error)
	require.NotNil(t, page.StatusCode)
	assert.Equal(t, 0, *page.StatusCode)
	require.NotNil(t, page.HTML)
	assert.Equal(t, "Connection error/timeout: https://board.example/jobs/123", *page.HTML)

	// Status 0 is not terminal, so the page stays pending for the next run.
	pending, err := repositories.NewDetailPagesRepository(dbContext.DB).
		Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestFetcherRun_errorStatus(t *testing.T) {

	dbContext := newTestDb(t)
	createPage(t, dbContext, "https://board.example/jobs/123")

	client := &stubHTTPClient{response: func(_ *http.Request) (*http.Response, error) {
		return htmlResponse(500, "server error"), nil
	}}
	fetcher, _ := newTestFetcher(dbContext, client)

	require.NoError(t, fetcher.Run(context.Background()))

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.First(&page).Error)
	require.NotNil(t, page.StatusCode)
	assert.Equal(t, 500, *page.StatusCode)
	require.NotNil(t, page.HTML)
	assert.Equal(t, "Error for URL https://board.example/jobs/123: 500", *page.HTML)
}

func TestFetcherRun_ipBlockRemapsTo429(t *testing.T) {

	dbContext := newTestDb(t)
	createPage(t, dbContext, "https://board.example/jobs/123")

	blockNotice := "Your IP address 10.0.0.1 has been blocked due to excessive requests"
	client := &stubHTTPClient{response: func(_ *http.Request) (*http.Response, error) {
		return htmlResponse(200, blockNotice), nil
	}}
	fetcher, _ := newTestFetcher(dbContext, client)

	require.NoError(t, fetcher.Run(context.Background()))

	var page entities.DetailPage
	require.NoError(t, dbContext.DB.First(&page).Error)
	require.NotNil(t, page.StatusCode)
	assert.Equal(t, 429, *page.StatusCode)

	// The block notice never ends up cached as page content, and the page
	// is retried on the next run.
	pending, err := repositories.NewDetailPagesRepository(dbContext.DB).
		Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
