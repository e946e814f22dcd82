package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lox/towerdash/internal/httputil"
	"github.com/lox/towerdash/internal/models"
)

// maxBodyBytes caps a single export download.
const maxBodyBytes = 256 << 20

// HTTPSource fetches a pipeline export over HTTP(S). Rate limiting and
// server errors are retried with exponential backoff.
type HTTPSource struct {
	URL    string
	client *http.Client

	newBackOff func() backoff.BackOff
}

func NewHTTPSource(rawURL string) *HTTPSource {
	return &HTTPSource{
		URL:    rawURL,
		client: httputil.NewClient(),
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 2 * time.Minute
			return bo
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Records(ctx context.Context) ([]models.TowerRecord, error) {
	var (
		body        []byte
		contentType string
	)
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json, application/x-ndjson, text/csv")

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch export: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch export: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch export: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
		return nil, err
	}

	return Decode(bytes.NewReader(body), s.format(contentType))
}

// format prefers the response media type and falls back to the URL path.
func (s *HTTPSource) format(contentType string) Format {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "text/csv":
			return FormatCSV
		case "application/x-ndjson", "application/jsonl", "application/x-jsonlines":
			return FormatJSONLines
		case "application/json":
			return FormatJSON
		}
	}
	if u, err := url.Parse(s.URL); err == nil {
		return FormatFor(u.Path)
	}
	return FormatJSON
}
