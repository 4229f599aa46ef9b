package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obsidianstack/creditmeter/pkg/types"
)

// UsageProvider computes the current period's usage records.
type UsageProvider interface {
	Usage(ctx context.Context) []types.UsageRecord
}

// Handler is the HTTP handler for all routes.
type Handler struct {
	usage UsageProvider
	mux   *http.ServeMux
}

// New creates a Handler and registers all routes. Metrics are served from g.
func New(u UsageProvider, g prometheus.Gatherer) http.Handler {
	h := &Handler{usage: u, mux: http.NewServeMux()}

	h.mux.HandleFunc("/usage", h.getUsage)
	h.mux.HandleFunc("/usage/", h.getUsage)
	h.mux.HandleFunc("/healthz", h.health)
	h.mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	h.mux.HandleFunc("/", h.root)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// getUsage serves GET /usage: credit usage of every current-period message.
func (h *Handler) getUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// Only the exact /usage/ path, not /usage/anything.
	if r.URL.Path != "/usage" && r.URL.Path != "/usage/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}

	records := h.usage.Usage(r.Context())
	out := make([]UsageResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toUsageResponse(rec))
	}
	slog.Debug("api: usage served", "records", len(out))
	jsonResp(w, http.StatusOK, UsageListResponse{Usage: out})
}

// root serves GET /: a pointer to the usage endpoint.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, rootResponse{Message: "Please visit /usage"})
}

// health returns GET /healthz.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, healthResponse{Status: "ok"})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toUsageResponse(rec types.UsageRecord) UsageResponse {
	return UsageResponse{
		MessageID:   rec.MessageID,
		Timestamp:   rec.Timestamp,
		ReportName:  rec.ReportName,
		CreditsUsed: rec.CreditsUsed,
	}
}
