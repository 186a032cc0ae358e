package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// FetchError is the only error the fetch step surfaces. StatusCode is zero
// when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch data: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return "failed to fetch data: " + e.Err.Error()
	}
	return "failed to fetch data"
}

func (e *FetchError) Unwrap() error { return e.Err }

var errEmptyURL = errors.New("empty url")

// FetchCSV issues a single GET and returns the body as text. There is no
// retry: any failure is final for the caller. An empty body is not an error.
func FetchCSV(ctx context.Context, c HTTPClient, url string, maxBytes int64) (string, error) {
	if url == "" {
		return "", &FetchError{Err: errEmptyURL}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	resp, err := c.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))}
	}
	var r io.Reader = resp.Body
	if maxBytes > 0 {
		// one extra byte tells an exact-size body apart from an oversized one
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return "", &FetchError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", maxBytes)}
	}
	return string(b), nil
}
