package tests

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/channels"
)

type stubChatSource struct {
	messages []channels.ChatMessage
}

func (s stubChatSource) MessagesSince(_ context.Context, since time.Time) ([]channels.ChatMessage, error) {
	var result []channels.ChatMessage
	for _, message := range s.messages {
		if message.Date.After(since) {
			result = append(result, message)
		}
	}
	return result, nil
}

type stubMailSource struct {
	messages []channels.MailMessage
}

func (s stubMailSource) MessagesSince(_ context.Context, since time.Time) ([]channels.MailMessage, error) {
	var result []channels.MailMessage
	for _, message := range s.messages {
		if message.Date.After(since) {
			result = append(result, message)
		}
	}
	return result, nil
}

// stubHTTPClient serves canned page bodies by URL.
type stubHTTPClient struct {
	mu    sync.Mutex
	pages map[string]string
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	body, ok := c.pages[req.URL.String()]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = "not found"
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}
