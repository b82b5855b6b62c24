package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/damon-houk/ppd-ingest-service/internal/domain/service"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
)

const maxLineSize = 1 << 20

// LandRegistryClient streams the price paid feed over HTTP
type LandRegistryClient struct {
	url         string
	httpClient  *http.Client
	logger      logger.Logger
	maxRetries  int
	backoffUnit time.Duration
}

// NewLandRegistryClient creates a new feed client
func NewLandRegistryClient(feedURL string, httpClient *http.Client, log logger.Logger) *LandRegistryClient {
	if httpClient == nil {
		// no client timeout: the body is streamed for as long as ingestion runs
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &LandRegistryClient{
		url:         feedURL,
		httpClient:  httpClient,
		logger:      log,
		maxRetries:  3,
		backoffUnit: time.Second,
	}
}

// Open requests the feed and returns a stream over its lines
func (c *LandRegistryClient) Open(ctx context.Context) (service.LineStream, error) {
	var (
		resp *http.Response
		err  error
	)

	// Execute request with retry logic
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "text/csv, text/plain")

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}

		if attempt < c.maxRetries {
			// Wait with quadratic backoff before retrying
			backoff := time.Duration(attempt*attempt) * c.backoffUnit
			c.logger.Warn("Feed request failed, retrying", map[string]interface{}{
				"url":         c.url,
				"attempt":     attempt,
				"max_retries": c.maxRetries,
				"backoff":     backoff.String(),
				"error":       err.Error(),
			})

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request after %d attempts: %v", service.ErrFeedUnavailable, c.maxRetries, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: feed returned status %d: %s", service.ErrFeedUnavailable, resp.StatusCode, string(body))
	}

	c.logger.Info("Feed opened", map[string]interface{}{
		"url":            c.url,
		"content_length": resp.ContentLength,
	})

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &lineStream{body: resp.Body, scanner: scanner}, nil
}

type lineStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (s *lineStream) Next() bool {
	return s.scanner.Scan()
}

func (s *lineStream) Line() string {
	return s.scanner.Text()
}

func (s *lineStream) Err() error {
	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", service.ErrFeedUnavailable, err)
	}
	return nil
}

func (s *lineStream) Close() error {
	return s.body.Close()
}
