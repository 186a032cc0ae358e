package export

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AngelCh415/adsdash/internal/ingest"
	"github.com/AngelCh415/adsdash/internal/models"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

// Summary is the payload pushed to the sink: the window, totals and
// rankings of a snapshot, without the record lists.
type Summary struct {
	GeneratedAt    time.Time                   `json:"generated_at"`
	DateRange      *models.DateWindow          `json:"date_range"`
	Metrics        models.DashboardMetrics     `json:"metrics"`
	TopKeywords    []models.KeywordPerformance `json:"top_keywords"`
	CampaignTrends []models.CampaignTrend      `json:"campaign_trends"`
	RecordCount    int                         `json:"record_count"`
	FilteredCount  int                         `json:"filtered_count"`
	DroppedRows    int                         `json:"dropped_rows"`
}

func SummaryOf(s models.Snapshot, now time.Time) Summary {
	return Summary{
		GeneratedAt:    now.UTC(),
		DateRange:      s.DateRange,
		Metrics:        s.Metrics,
		TopKeywords:    s.TopKeywords,
		CampaignTrends: s.CampaignTrends,
		RecordCount:    s.RecordCount,
		FilteredCount:  s.FilteredCount,
		DroppedRows:    s.DroppedRows,
	}
}

// Sink posts summaries to an external endpoint, signing the body with
// HMAC-SHA256 in the X-Signature header.
type Sink struct {
	c      ingest.HTTPClient
	url    string
	secret string
}

func NewSink(c ingest.HTTPClient, url, secret string) *Sink {
	return &Sink{c: c, url: url, secret: secret}
}

func (s *Sink) Configured() bool { return s.url != "" && s.secret != "" }

func (s *Sink) Push(ctx context.Context, sum Summary) error {
	if !s.Configured() {
		return ErrSinkNotConfigured
	}
	b, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(s.secret, b))
	resp, err := s.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("export sink non-2xx: %d", resp.StatusCode)
	}
	return nil
}

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
