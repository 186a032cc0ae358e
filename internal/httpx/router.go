package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/AngelCh415/adsdash/internal/config"
	"github.com/AngelCh415/adsdash/internal/export"
	"github.com/AngelCh415/adsdash/internal/ingest"
	"github.com/AngelCh415/adsdash/internal/metrics"
	"github.com/AngelCh415/adsdash/internal/models"
	"github.com/AngelCh415/adsdash/internal/telemetry"
	"github.com/AngelCh415/adsdash/internal/utils"
)

// Dashboard is the read/update contract the router serves.
type Dashboard interface {
	Snapshot() models.Snapshot
	SetWindow(models.DateWindow) models.Snapshot
	Loading() bool
}

type Exporter interface {
	Configured() bool
	Push(ctx context.Context, s export.Summary) error
}

const defaultRecordPage = 100

type handlers struct {
	log   *slog.Logger
	d     Dashboard
	sink  Exporter
	valid *validator.Validate
}

func NewRouter(log *slog.Logger, d Dashboard, sink Exporter, m *telemetry.Metrics, rl config.RateLimit) http.Handler {
	h := &handlers{log: log, d: d, sink: sink, valid: validator.New()}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log, m))
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Loading() {
			http.Error(w, "loading", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	if m != nil {
		mux.Method(http.MethodGet, "/metrics", m.Handler())
	}

	mux.Route("/api", func(r chi.Router) {
		r.Use(utils.RateLimit(rl.RPS, rl.Burst, log))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.getDashboard)
			r.Put("/window", h.putWindow)
			r.Get("/records", h.getRecords)
			r.Get("/metrics", h.getMetrics)
			r.Get("/keywords", h.getKeywords)
			r.Get("/trends", h.getTrends)
			r.Get("/export.xlsx", h.getWorkbook)
		})
		r.Post("/export/run", h.runExport)
	})

	return mux
}

func (h *handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	s := h.d.Snapshot()
	if r.URL.Query().Get("include") != "records" {
		s.RawData = nil
		s.FilteredData = nil
	}
	render.JSON(w, r, s)
}

type windowRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

func (h *handlers) putWindow(w http.ResponseWriter, r *http.Request) {
	var req windowRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeErr(w, r, errBadRequest(err))
		return
	}
	if err := h.valid.Struct(req); err != nil {
		writeErr(w, r, errBadRequest(err))
		return
	}
	from, _ := ingest.ParseDate(req.From)
	to, _ := ingest.ParseDate(req.To)
	if to.Before(from) {
		writeErr(w, r, errInvalid("to", "must not be before from"))
		return
	}
	s := h.d.SetWindow(metrics.DayWindow(from, to))
	h.log.Info("window changed", slog.String("from", req.From), slog.String("to", req.To), slog.String("rid", utils.RID(r.Context())))
	s.RawData = nil
	s.FilteredData = nil
	render.JSON(w, r, s)
}

type recordsResponse struct {
	Scope   string            `json:"scope"`
	Page    metrics.Page      `json:"page"`
	Records []models.AdRecord `json:"records"`
}

func (h *handlers) getRecords(w http.ResponseWriter, r *http.Request) {
	s := h.d.Snapshot()
	q := r.URL.Query()
	scope := q.Get("scope")
	rows := s.FilteredData
	switch scope {
	case "", "filtered":
		scope = "filtered"
	case "raw":
		rows = s.RawData
	default:
		writeErr(w, r, errInvalid("scope", "must be raw or filtered"))
		return
	}
	p := metrics.PageFromQuery(q, defaultRecordPage, len(rows))
	render.JSON(w, r, recordsResponse{Scope: scope, Page: p, Records: metrics.Paginate(rows, p)})
}

func (h *handlers) getMetrics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.d.Snapshot().Metrics)
}

func (h *handlers) getKeywords(w http.ResponseWriter, r *http.Request) {
	s := h.d.Snapshot()
	v := r.URL.Query().Get("limit")
	if v == "" {
		render.JSON(w, r, s.TopKeywords)
		return
	}
	k, err := strconv.Atoi(v)
	if err != nil || k < 0 {
		writeErr(w, r, errInvalid("limit", "must be a non-negative integer"))
		return
	}
	render.JSON(w, r, metrics.TopKeywords(s.FilteredData, k))
}

func (h *handlers) getTrends(w http.ResponseWriter, r *http.Request) {
	s := h.d.Snapshot()
	render.JSON(w, r, metrics.FilterCampaigns(s.CampaignTrends, r.URL.Query().Get("campaign")))
}

func (h *handlers) getWorkbook(w http.ResponseWriter, r *http.Request) {
	if h.d.Loading() {
		writeErr(w, r, errNotReady())
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, h.d.Snapshot()); err != nil {
		h.log.Error("workbook export failed", slog.String("err", err.Error()))
		writeErr(w, r, errInternal(err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ads-dashboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *handlers) runExport(w http.ResponseWriter, r *http.Request) {
	if !h.sink.Configured() {
		writeErr(w, r, errSinkNotConfigured())
		return
	}
	if h.d.Loading() {
		writeErr(w, r, errNotReady())
		return
	}
	sum := export.SummaryOf(h.d.Snapshot(), time.Now())
	if err := h.sink.Push(r.Context(), sum); err != nil {
		if errors.Is(err, export.ErrSinkNotConfigured) {
			writeErr(w, r, errSinkNotConfigured())
			return
		}
		h.log.Error("export failed", slog.String("err", err.Error()))
		writeErr(w, r, errUpstream(err))
		return
	}
	render.JSON(w, r, map[string]any{"exported": true, "filtered_count": sum.FilteredCount})
}
