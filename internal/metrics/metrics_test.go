package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics body: %v", err)
	}
	return string(body)
}

func TestRecordRequestAndExport(t *testing.T) {
	RecordRequest("POST", "/v1/fetch", 200, 42*time.Millisecond)

	out := scrape(t)
	if !strings.Contains(out, `webscout_http_requests_total{method="POST",path="/v1/fetch",status="200"} 1`) {
		t.Fatalf("expected request counter in export, got:\n%s", out)
	}
	if !strings.Contains(out, "webscout_http_request_duration_seconds_count") {
		t.Fatalf("expected latency histogram in export, got:\n%s", out)
	}
}

func TestRecordSearchFetchAndTools(t *testing.T) {
	RecordSearch("ok", 3)
	RecordSearch("empty", 0)
	RecordFetch("invalid")
	RecordToolCall("search", true)
	RecordToolCall("fetch_web_content", false)

	out := scrape(t)
	for _, want := range []string{
		`webscout_search_total{outcome="ok"}`,
		`webscout_search_total{outcome="empty"}`,
		`webscout_search_results_total 3`,
		`webscout_fetch_total{outcome="invalid"}`,
		`webscout_tool_calls_total{status="success",tool="search"}`,
		`webscout_tool_calls_total{status="error",tool="fetch_web_content"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in export, got:\n%s", want, out)
		}
	}
}
