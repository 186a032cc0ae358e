// Package dashboard owns one dashboard session: it fetches the ads export
// once, keeps the parsed records, and rebuilds every derived view whenever
// the records or the selected date window change.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AngelCh415/adsdash/internal/config"
	"github.com/AngelCh415/adsdash/internal/ingest"
	"github.com/AngelCh415/adsdash/internal/metrics"
	"github.com/AngelCh415/adsdash/internal/models"
	"github.com/AngelCh415/adsdash/internal/store"
	"github.com/AngelCh415/adsdash/internal/telemetry"
)

type Options struct {
	URL         string
	MaxBytes    int64
	TopKeywords int
	Columns     config.Columns
	MemoEntries int64
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		URL:         cfg.CSVURL,
		MaxBytes:    cfg.MaxCSVBytes,
		TopKeywords: cfg.TopKeywords,
		Columns:     cfg.Columns,
		MemoEntries: cfg.MemoEntries,
	}
}

type Dashboard struct {
	opts Options
	c    ingest.HTTPClient
	st   *store.MemoryStore
	log  *slog.Logger
	m    *telemetry.Metrics
	memo *memo

	once    sync.Once
	initErr error

	mu        sync.RWMutex
	loading   bool
	errMsg    *string
	window    *models.DateWindow
	dropped   int
	fetchedAt *time.Time
	snap      models.Snapshot
}

func New(opts Options, c ingest.HTTPClient, st *store.MemoryStore, log *slog.Logger, m *telemetry.Metrics) (*Dashboard, error) {
	mc, err := newMemo(opts.MemoEntries)
	if err != nil {
		return nil, fmt.Errorf("dashboard memo: %w", err)
	}
	d := &Dashboard{
		opts:    opts,
		c:       c,
		st:      st,
		log:     log.With(slog.String("component", "dashboard")),
		m:       m,
		memo:    mc,
		loading: true,
	}
	d.snap = d.build()
	return d, nil
}

// Init fetches and parses the export. It runs once per session; later calls
// return the first call's error without fetching again.
func (d *Dashboard) Init(ctx context.Context) error {
	d.once.Do(func() { d.initErr = d.load(ctx) })
	return d.initErr
}

func (d *Dashboard) load(ctx context.Context) error {
	start := time.Now()
	text, err := ingest.FetchCSV(ctx, d.c, d.opts.URL, d.opts.MaxBytes)
	if err != nil {
		d.m.ObserveFetch("error", time.Since(start))
		d.log.Error("fetch failed", slog.String("err", err.Error()))
		d.st.Replace(nil)
		msg := err.Error()
		d.mu.Lock()
		defer d.mu.Unlock()
		d.errMsg = &msg
		d.window = nil
		d.loading = false
		d.snap = d.build()
		return err
	}
	d.m.ObserveFetch("ok", time.Since(start))

	res := ingest.ParseCSV(text, d.opts.Columns)
	d.m.RowsParsed.Add(float64(len(res.Records)))
	d.m.RowsDropped.Add(float64(res.Dropped))
	d.st.Replace(res.Records)
	d.m.Records.Set(float64(d.st.Len()))
	d.memo.clear()
	d.log.Info("ingest complete",
		slog.Int("records", len(res.Records)),
		slog.Int("dropped", res.Dropped),
		slog.Duration("took", time.Since(start)))

	now := time.Now().UTC()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropped = res.Dropped
	d.fetchedAt = &now
	if b, ok := d.st.Bounds(); ok && d.window == nil {
		w := metrics.DefaultWindow(b)
		d.window = &w
	}
	d.errMsg = nil
	d.loading = false
	d.snap = d.build()
	return nil
}

// SetWindow selects a new date window and rebuilds the derived views. A
// window set while loading is kept and applied once the data arrives.
func (d *Dashboard) SetWindow(w models.DateWindow) models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.window = &w
	if !d.loading {
		d.snap = d.build()
	}
	return d.snap
}

func (d *Dashboard) Snapshot() models.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Close releases the memo cache.
func (d *Dashboard) Close() { d.memo.close() }

func (d *Dashboard) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// build assembles a fresh snapshot from the current state. Callers hold mu.
func (d *Dashboard) build() models.Snapshot {
	s := models.Snapshot{
		Loading:        d.loading,
		Error:          d.errMsg,
		DroppedRows:    d.dropped,
		FetchedAt:      d.fetchedAt,
		RawData:        []models.AdRecord{},
		FilteredData:   []models.AdRecord{},
		TopKeywords:    []models.KeywordPerformance{},
		CampaignTrends: []models.CampaignTrend{},
	}
	if d.loading {
		return s
	}
	s.RawData = d.st.All()
	s.RecordCount = len(s.RawData)
	if b, ok := metrics.Bounds(s.RawData); ok {
		s.AvailableDateRange = &b
	}
	if d.window == nil {
		return s
	}
	w := *d.window
	s.DateRange = &w
	v := d.derive(w)
	s.FilteredData = v.filtered
	s.FilteredCount = len(v.filtered)
	s.Metrics = v.metrics
	s.TopKeywords = v.keywords
	s.CampaignTrends = v.trends
	return s
}

func (d *Dashboard) derive(w models.DateWindow) view {
	key := memoKey(d.st.Version(), w)
	if v, ok := d.memo.get(key); ok {
		d.m.Recomputes.WithLabelValues("hit").Inc()
		return v
	}
	d.m.Recomputes.WithLabelValues("miss").Inc()
	v := computeView(d.st.Query(w.From, w.To, nil), w, d.opts.TopKeywords)
	d.memo.set(key, v)
	return v
}

// view is everything derived from (records, window).
type view struct {
	filtered []models.AdRecord
	metrics  models.DashboardMetrics
	keywords []models.KeywordPerformance
	trends   []models.CampaignTrend
}

// computeView derives the views from the records already filtered to w.
func computeView(filtered []models.AdRecord, w models.DateWindow, topK int) view {
	return view{
		filtered: filtered,
		metrics:  metrics.Aggregate(filtered),
		keywords: metrics.TopKeywords(filtered, topK),
		trends:   metrics.CampaignTrends(filtered, w),
	}
}
