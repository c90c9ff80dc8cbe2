package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"webscout/internal/config"
	"webscout/internal/model"
)

type stubSearcher struct {
	results []model.SearchResult
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) []model.SearchResult {
	s.queries = append(s.queries, query)
	return s.results
}

type stubFetcher struct {
	result model.FetchResult
}

func (f *stubFetcher) Fetch(context.Context, string) model.FetchResult {
	return f.result
}

func newTestServer(t *testing.T, cfg *config.Config, s Searcher, f Fetcher) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	return NewServer(cfg, s, f, nil)
}

func post(t *testing.T, srv *Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, data
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil, &stubSearcher{}, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz?deep=true", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["redis"] != "disabled" {
		t.Fatalf("unexpected health body: %v", body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, &stubSearcher{}, &stubFetcher{})

	// Generate one request so the counter has a sample.
	_, _ = srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(data), "webscout_http_requests_total") {
		t.Fatalf("metrics output missing request counter:\n%s", data)
	}
}

func TestSearchHandler(t *testing.T) {
	searcher := &stubSearcher{results: []model.SearchResult{
		{Title: "A", URL: "https://a.example"},
		{Title: "B", URL: "https://b.example"},
	}}
	srv := newTestServer(t, nil, searcher, &stubFetcher{})

	resp, data := post(t, srv, "/v1/search", `{"query":" golang ","limit":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var body SearchResponse
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Data) != 1 || body.Data[0].Title != "A" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if searcher.queries[0] != "golang" {
		t.Fatalf("query not trimmed: %q", searcher.queries[0])
	}
}

func TestSearchHandlerEmptyResultsIsArray(t *testing.T) {
	srv := newTestServer(t, nil, &stubSearcher{}, &stubFetcher{})

	_, data := post(t, srv, "/v1/search", `{"query":"nothing"}`)
	if !strings.Contains(string(data), `"data":[]`) {
		t.Fatalf("expected empty array, got %s", data)
	}
}

func TestSearchHandlerValidation(t *testing.T) {
	srv := newTestServer(t, nil, &stubSearcher{}, &stubFetcher{})

	cases := map[string]string{
		`{"query":"  "}`: "BAD_REQUEST",
		`{"query":`:      "BAD_REQUEST_INVALID_JSON",
	}
	for body, code := range cases {
		resp, data := post(t, srv, "/v1/search", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, resp.StatusCode)
		}
		var er ErrorResponse
		if err := json.Unmarshal(data, &er); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if er.Success || er.Code != code {
			t.Fatalf("%s: unexpected error body %+v", body, er)
		}
	}
}

func TestFetchHandler(t *testing.T) {
	f := &stubFetcher{result: model.FetchOK(&model.WebContent{
		Content:  "# Hi",
		Metadata: &model.Metadata{Title: "Hi"},
	})}
	srv := newTestServer(t, nil, &stubSearcher{}, f)

	resp, data := post(t, srv, "/v1/fetch", `{"url":"https://example.com"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var body model.FetchResult
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data == nil || body.Data.Content != "# Hi" || body.Data.Metadata.Title != "Hi" {
		t.Fatalf("unexpected body: %s", data)
	}
}

func TestFetchHandlerFailures(t *testing.T) {
	cases := []struct {
		msg    string
		status int
		code   string
	}{
		{"Invalid URL format", http.StatusBadRequest, "BAD_REQUEST"},
		{"URL cannot be empty", http.StatusBadRequest, "BAD_REQUEST"},
		{"Failed to fetch content: request failed with status code 500", http.StatusBadGateway, "FETCH_FAILED"},
	}
	for _, tc := range cases {
		srv := newTestServer(t, nil, &stubSearcher{}, &stubFetcher{result: model.FetchFailed(tc.msg)})
		resp, data := post(t, srv, "/v1/fetch", `{"url":"x"}`)
		if resp.StatusCode != tc.status {
			t.Fatalf("%q: status = %d", tc.msg, resp.StatusCode)
		}
		var er ErrorResponse
		if err := json.Unmarshal(data, &er); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if er.Code != tc.code || er.Error != tc.msg {
			t.Fatalf("%q: unexpected body %+v", tc.msg, er)
		}
	}
}

func TestLocalRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.DefaultPerMinute = 2
	srv := newTestServer(t, cfg, &stubSearcher{}, &stubFetcher{})

	for i := 0; i < 2; i++ {
		if resp, _ := post(t, srv, "/v1/search", `{"query":"q"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, resp.StatusCode)
		}
	}
	resp, data := post(t, srv, "/v1/search", `{"query":"q"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if !strings.Contains(string(data), "RATE_LIMIT_EXCEEDED") {
		t.Fatalf("unexpected body: %s", data)
	}

	// Health is outside /v1 and never limited.
	health, _ := srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", health.StatusCode)
	}
}
