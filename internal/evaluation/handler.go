package evaluation

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
)

// defaultHistoryWindow is how far back a series query reaches without ?since.
const defaultHistoryWindow = 30 * 24 * time.Hour

// HistoryReader reads recorded benchmark series.
type HistoryReader interface {
	Load(ctx context.Context, model, metric string, since time.Time) ([]DataPoint, error)
}

// Handler serves benchmark history over HTTP.
type Handler struct {
	history HistoryReader
	now     func() time.Time
}

// NewHandler creates a new benchmark history handler.
func NewHandler(h HistoryReader) *Handler {
	return &Handler{history: h, now: time.Now}
}

// RegisterRoutes registers benchmark history routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/benchmarks/{model}/{metric}", h.handleSeries)
}

// SeriesResponse is one metric series for one model.
type SeriesResponse struct {
	Model  string      `json:"model"`
	Metric string      `json:"metric"`
	Since  time.Time   `json:"since"`
	Points []DataPoint `json:"points"`
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	metric := r.PathValue("metric")

	if !slices.Contains(MetricNames, metric) {
		errors.WriteError(w, errors.ValidationError("unknown metric").
			WithDetail("metric", metric))
		return
	}

	since, err := h.parseSince(r.URL.Query().Get("since"))
	if err != nil {
		errors.WriteError(w, errors.ValidationError("since must be an RFC 3339 time or a duration like 24h"))
		return
	}

	points, err := h.history.Load(r.Context(), model, metric, since)
	if err != nil {
		errors.WriteError(w, errors.InternalError("load benchmark history", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SeriesResponse{
		Model:  model,
		Metric: metric,
		Since:  since,
		Points: points,
	})
}

// parseSince accepts an RFC 3339 timestamp or a look-back duration.
func (h *Handler) parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return h.now().Add(-defaultHistoryWindow), nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return h.now().Add(-d), nil
	}
	return time.Parse(time.RFC3339, raw)
}
