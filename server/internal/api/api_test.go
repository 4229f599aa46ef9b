package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/obsidianstack/creditmeter/pkg/types"
	"github.com/obsidianstack/creditmeter/server/internal/api"
	"github.com/obsidianstack/creditmeter/server/internal/metrics"
)

// --- test helpers -----------------------------------------------------------

type stubUsage struct {
	records []types.UsageRecord
	calls   int
}

func (s *stubUsage) Usage(context.Context) []types.UsageRecord {
	s.calls++
	return s.records
}

func name(s string) *string { return &s }

func newHandler(records ...types.UsageRecord) (http.Handler, *stubUsage) {
	st := &stubUsage{records: records}
	if st.records == nil {
		st.records = []types.UsageRecord{}
	}
	return api.New(st, prometheus.NewRegistry()), st
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /usage -----------------------------------------------------------------

func TestUsage_Records(t *testing.T) {
	h, _ := newHandler(
		types.UsageRecord{MessageID: 1, Timestamp: "2024-04-29T02:08:29.375Z", CreditsUsed: 1},
		types.UsageRecord{MessageID: 2, Timestamp: "2024-04-29T03:25:03.613Z", ReportName: name("R"), CreditsUsed: 7},
	)
	rr := do(t, h, http.MethodGet, "/usage")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q", ct)
	}

	var resp struct {
		Usage []map[string]interface{} `json:"usage"`
	}
	decode(t, rr, &resp)

	if len(resp.Usage) != 2 {
		t.Fatalf("usage: got %d entries, want 2", len(resp.Usage))
	}
	first := resp.Usage[0]
	if _, ok := first["report_name"]; ok {
		t.Errorf("report_name should be omitted when absent, got %v", first["report_name"])
	}
	if first["message_id"].(float64) != 1 || first["credits_used"].(float64) != 1 {
		t.Errorf("first entry: got %v", first)
	}
	second := resp.Usage[1]
	if second["report_name"] != "R" {
		t.Errorf("report_name: got %v, want R", second["report_name"])
	}
	if second["credits_used"].(float64) != 7 {
		t.Errorf("credits_used: got %v, want 7", second["credits_used"])
	}
	if second["timestamp"] != "2024-04-29T03:25:03.613Z" {
		t.Errorf("timestamp: got %v", second["timestamp"])
	}
}

func TestUsage_EmptyIsArray(t *testing.T) {
	h, _ := newHandler()
	rr := do(t, h, http.MethodGet, "/usage")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"usage":[]}` {
		t.Errorf("body: got %s, want {\"usage\":[]}", body)
	}
}

func TestUsage_TrailingSlash(t *testing.T) {
	h, st := newHandler(types.UsageRecord{MessageID: 3, Timestamp: "t", CreditsUsed: 2.45})
	rr := do(t, h, http.MethodGet, "/usage/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.UsageListResponse
	decode(t, rr, &resp)
	if len(resp.Usage) != 1 || resp.Usage[0].CreditsUsed != 2.45 {
		t.Errorf("usage: got %+v", resp.Usage)
	}
	if st.calls != 1 {
		t.Errorf("Usage calls: got %d, want 1", st.calls)
	}
}

func TestUsage_SubpathNotFound(t *testing.T) {
	h, st := newHandler()
	rr := do(t, h, http.MethodGet, "/usage/123")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
	if st.calls != 0 {
		t.Errorf("Usage calls: got %d, want 0", st.calls)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newHandler()
	for _, path := range []string{"/usage", "/usage/", "/", "/healthz"} {
		rr := do(t, h, http.MethodPost, path)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status: got %d, want 405", path, rr.Code)
		}
	}
}

// --- / and /healthz ---------------------------------------------------------

func TestRoot(t *testing.T) {
	h, _ := newHandler()
	rr := do(t, h, http.MethodGet, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["message"] != "Please visit /usage" {
		t.Errorf("message: got %q", resp["message"])
	}
}

func TestUnknownPath(t *testing.T) {
	h, _ := newHandler()
	if rr := do(t, h, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	h, st := newHandler()
	rr := do(t, h, http.MethodGet, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if st.calls != 0 {
		t.Errorf("healthz must not compute usage, got %d calls", st.calls)
	}
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.UsageRequest()
	m.UsageRequest()
	m.Fetch(metrics.OpReport, metrics.OutcomeOK)

	h := api.New(&stubUsage{}, reg)
	rr := do(t, h, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}

	families := make([]*dto.MetricFamily, 0, len(mfs))
	for _, mf := range mfs {
		families = append(families, mf)
	}
	if got := metrics.Sum(families, "creditmeter_usage_requests_total"); got != 2 {
		t.Errorf("usage_requests_total: got %v, want 2", got)
	}
	if got := metrics.Sum(families, "creditmeter_remote_fetches_total"); got != 1 {
		t.Errorf("remote_fetches_total: got %v, want 1", got)
	}
}
