package dashboard

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/adsdash/internal/config"
	"github.com/AngelCh415/adsdash/internal/ingest"
	"github.com/AngelCh415/adsdash/internal/metrics"
	"github.com/AngelCh415/adsdash/internal/store"
	"github.com/AngelCh415/adsdash/internal/telemetry"
)

const sampleCSV = `Date,Campaign,Keyword,Impressions,Clicks,Cost,Conversions
2024-01-01,CampA,shoes,100,10,$20.00,2
2024-01-02,CampA,boots,50,5,$10.00,1
2024-02-01,CampB,shoes,200,20,$40.00,4
bad,CampB,shoes,200,20,$40.00,4
`

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

type fixture struct {
	d    *Dashboard
	m    *telemetry.Metrics
	hits *atomic.Int32
}

func newFixture(t *testing.T, h http.HandlerFunc) fixture {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	m := telemetry.New("test")
	opts := Options{URL: srv.URL, TopKeywords: 10, Columns: config.DefaultColumns(), MemoEntries: 16}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := New(opts, ingest.NewHTTPClient(2*time.Second), store.NewMemoryStore(), log, m)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return fixture{d: d, m: m, hits: &hits}
}

func serve(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, body)
	}
}

func TestDashboardStartsLoading(t *testing.T) {
	f := newFixture(t, serve(sampleCSV))
	s := f.d.Snapshot()
	assert.True(t, s.Loading)
	assert.True(t, f.d.Loading())
	assert.Nil(t, s.Error)
	assert.Nil(t, s.DateRange)
	assert.Empty(t, s.RawData)
}

func TestDashboardInitPopulatesDefaultWindow(t *testing.T) {
	f := newFixture(t, serve(sampleCSV))
	require.NoError(t, f.d.Init(context.Background()))

	s := f.d.Snapshot()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Error)
	assert.Len(t, s.RawData, 3)
	assert.Equal(t, 3, s.RecordCount)
	assert.Equal(t, 1, s.DroppedRows)
	require.NotNil(t, s.FetchedAt)

	require.NotNil(t, s.AvailableDateRange)
	assert.Equal(t, day("2024-01-01"), s.AvailableDateRange.Min)
	assert.Equal(t, day("2024-02-01"), s.AvailableDateRange.Max)

	require.NotNil(t, s.DateRange)
	assert.Equal(t, day("2024-01-03"), s.DateRange.From)
	assert.Equal(t, day("2024-02-01").Add(24*time.Hour-time.Millisecond), s.DateRange.To)

	require.Len(t, s.FilteredData, 1)
	assert.Equal(t, 40.0, s.Metrics.TotalSpend)
	require.Len(t, s.TopKeywords, 1)
	assert.Equal(t, "shoes", s.TopKeywords[0].Keyword)
	require.Len(t, s.CampaignTrends, 1)
	assert.Equal(t, "CampB", s.CampaignTrends[0].Campaign)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.Fetches.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.m.RowsParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.RowsDropped))
}

func TestDashboardSetWindowRecomputes(t *testing.T) {
	f := newFixture(t, serve(sampleCSV))
	require.NoError(t, f.d.Init(context.Background()))

	s := f.d.SetWindow(metrics.DayWindow(day("2024-01-01"), day("2024-01-31")))
	assert.Len(t, s.FilteredData, 2)
	assert.Equal(t, 30.0, s.Metrics.TotalSpend)
	assert.Equal(t, int64(15), s.Metrics.TotalClicks)
	assert.Equal(t, int64(150), s.Metrics.TotalImpressions)
	assert.Equal(t, 3.0, s.Metrics.TotalConversions)
	assert.InDelta(t, 0.1, s.Metrics.CTR, 1e-12)
	assert.InDelta(t, 2.0, s.Metrics.CPC, 1e-12)
	assert.InDelta(t, 10.0, s.Metrics.AvgCPA, 1e-12)
	require.Len(t, s.CampaignTrends, 1)
	assert.Len(t, s.CampaignTrends[0].Points, 31)
	assert.Equal(t, day("2024-01-01"), s.CampaignTrends[0].Points[0].Date)
	assert.Equal(t, s.Metrics.TotalSpend, s.CampaignTrends[0].Totals.TotalSpend)
	assert.Len(t, s.TopKeywords, 2)
	assert.Equal(t, s, f.d.Snapshot())

	// the same window again is served from the memo
	hits := testutil.ToFloat64(f.m.Recomputes.WithLabelValues("hit"))
	again := f.d.SetWindow(metrics.DayWindow(day("2024-01-01"), day("2024-01-31")))
	assert.Equal(t, s.Metrics, again.Metrics)
	assert.Equal(t, s.TopKeywords, again.TopKeywords)
	assert.Equal(t, s.CampaignTrends, again.CampaignTrends)
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.m.Recomputes.WithLabelValues("hit")), hits+1)

	empty := f.d.SetWindow(metrics.DayWindow(day("2030-01-01"), day("2030-01-31")))
	assert.Empty(t, empty.FilteredData)
	assert.Zero(t, empty.Metrics)
	assert.Empty(t, empty.TopKeywords)
	assert.Len(t, empty.RawData, 3)
}

func TestDashboardFetch404(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

	err := f.d.Init(context.Background())
	require.Error(t, err)

	s := f.d.Snapshot()
	assert.False(t, s.Loading)
	require.NotNil(t, s.Error)
	assert.Contains(t, *s.Error, "404")
	assert.NotNil(t, s.RawData)
	assert.Empty(t, s.RawData)
	assert.Nil(t, s.DateRange)
	assert.Nil(t, s.AvailableDateRange)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.Fetches.WithLabelValues("error")))
}

func TestDashboardEmptyBody(t *testing.T) {
	f := newFixture(t, serve(""))
	require.NoError(t, f.d.Init(context.Background()))

	s := f.d.Snapshot()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Error)
	assert.Empty(t, s.RawData)
	assert.Nil(t, s.DateRange)
	assert.Nil(t, s.AvailableDateRange)
	assert.Zero(t, s.Metrics)
}

func TestDashboardInitRunsOnce(t *testing.T) {
	f := newFixture(t, serve(sampleCSV))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.d.Init(context.Background()))
		}()
	}
	wg.Wait()
	require.NoError(t, f.d.Init(context.Background()))
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestDashboardInitFailureIsSticky(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) { http.Error(w, "boom", 500) })
	first := f.d.Init(context.Background())
	second := f.d.Init(context.Background())
	require.Error(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.hits.Load())
}

func TestDashboardWindowSetWhileLoadingIsKept(t *testing.T) {
	f := newFixture(t, serve(sampleCSV))
	w := metrics.DayWindow(day("2024-01-01"), day("2024-02-01"))

	s := f.d.SetWindow(w)
	assert.True(t, s.Loading)

	require.NoError(t, f.d.Init(context.Background()))
	s = f.d.Snapshot()
	require.NotNil(t, s.DateRange)
	assert.Equal(t, w, *s.DateRange)
	assert.Len(t, s.FilteredData, 3)
}
