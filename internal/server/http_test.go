package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/sector_radar/internal/conf"
	"github.com/iWorld-y/sector_radar/internal/service"
	"github.com/iWorld-y/sector_radar/internal/usecase"
	"github.com/iWorld-y/sector_radar/pkg/analyzer"
	"github.com/iWorld-y/sector_radar/pkg/cache"
	"github.com/iWorld-y/sector_radar/pkg/collector"
	"github.com/iWorld-y/sector_radar/pkg/report"
	"github.com/iWorld-y/sector_radar/pkg/search"
)

const testAPIKey = "test-key-123"

// stubSearcher 模拟搜索端
type stubSearcher struct {
	calls atomic.Int32
}

func (s *stubSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	s.calls.Add(1)
	return &search.Response{Results: []search.Result{
		{Title: "Sector update", URL: "https://example.com/update", Content: strings.Repeat("market data ", 30)},
	}}, nil
}

// stubChatModel 模拟 LLM 端
type stubChatModel struct {
	fail  bool
	calls atomic.Int32
}

func (s *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, errors.New("simulated timeout")
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: strings.Repeat("## Market Overview\nDetailed insight. ", 10),
	}, nil
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (s *stubChatModel) BindTools(tools []*schema.ToolInfo) error { return nil }

type testEnv struct {
	ts       *httptest.Server
	searcher *stubSearcher
	cm       *stubChatModel
}

func newTestEnv(t *testing.T, limit int32, llmFails bool) *testEnv {
	t.Helper()

	logger := log.DefaultLogger
	searcher := &stubSearcher{}
	cm := &stubChatModel{fail: llmFails}

	limits := &conf.Limits{RateLimitPerHour: limit, CacheTtlSeconds: 3600}
	engine := &conf.Engine{Llm: &conf.LLM{ApiKey: "configured"}}

	col := collector.New(searcher)
	an := analyzer.New(cm, nil)
	uc := usecase.NewAnalysisUseCase(col, an, cache.New(time.Hour),
		report.NewGenerator(), time.Hour, logger)
	svc := service.NewAnalysisService(uc, limits, engine, logger)

	srv := NewHTTPServer(
		&conf.Server{Http: &conf.HTTP{}},
		&conf.Auth{ApiKeys: []string{testAPIKey}},
		NewRateLimiter(limits),
		svc,
		logger,
	)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, searcher: searcher, cm: cm}
}

func (e *testEnv) get(t *testing.T, path, apiKey string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, body
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, 10, false)

	resp, body := env.get(t, "/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["name"] != service.Name {
		t.Errorf("name = %v", body["name"])
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 10, false)

	resp, body := env.get(t, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["llm_configured"] != true {
		t.Errorf("llm_configured = %v, want true", body["llm_configured"])
	}
}

func TestAnalyze_Success(t *testing.T) {
	env := newTestEnv(t, 10, false)

	resp, body := env.get(t, "/analyze/technology", testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["success"] != true {
		t.Error("success != true")
	}
	if body["sector"] != "technology" {
		t.Errorf("sector = %v", body["sector"])
	}

	reportMD, _ := body["report"].(string)
	for _, section := range []string{"## Summary", "## Data Sources", "## Analysis"} {
		if !strings.Contains(reportMD, section) {
			t.Errorf("report missing section %q", section)
		}
	}

	// 成功响应也带限流头
	if resp.Header.Get("X-RateLimit-Limit") != "10" {
		t.Errorf("X-RateLimit-Limit = %q", resp.Header.Get("X-RateLimit-Limit"))
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "9" {
		t.Errorf("X-RateLimit-Remaining = %q", resp.Header.Get("X-RateLimit-Remaining"))
	}
	if resp.Header.Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset header missing")
	}
}

func TestAnalyze_SecondRequestFromCache(t *testing.T) {
	env := newTestEnv(t, 10, false)

	_, first := env.get(t, "/analyze/technology", testAPIKey)
	_, second := env.get(t, "/analyze/technology", testAPIKey)

	if second["report"] != first["report"] {
		t.Error("cached report differs from original")
	}
	if msg, _ := second["message"].(string); !strings.Contains(msg, "cache") {
		t.Errorf("message = %q, want cache hint", msg)
	}
	// 第二次请求不触发外部调用
	if env.searcher.calls.Load() != 1 {
		t.Errorf("search calls = %d, want 1", env.searcher.calls.Load())
	}
	if env.cm.calls.Load() != 1 {
		t.Errorf("llm calls = %d, want 1", env.cm.calls.Load())
	}
}

func TestAnalyze_InvalidSector(t *testing.T) {
	env := newTestEnv(t, 10, false)

	resp, body := env.get(t, "/analyze/Pharma_2024!", testAPIKey)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["success"] != false {
		t.Error("success != false")
	}
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "invalid sector name") {
		t.Errorf("error = %q", errMsg)
	}
}

func TestAnalyze_MissingAPIKey(t *testing.T) {
	env := newTestEnv(t, 10, false)

	resp, _ := env.get(t, "/analyze/technology", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") != "ApiKey" {
		t.Errorf("WWW-Authenticate = %q", resp.Header.Get("WWW-Authenticate"))
	}
}

func TestAnalyze_InvalidAPIKey(t *testing.T) {
	env := newTestEnv(t, 10, false)

	resp, _ := env.get(t, "/analyze/technology", "wrong-key")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	env := newTestEnv(t, 10, false)

	for i := 0; i < 10; i++ {
		resp, _ := env.get(t, "/analyze/technology", testAPIKey)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	// 第 11 次触发 429
	resp, body := env.get(t, "/analyze/technology", testAPIKey)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("11th request status = %d, want 429", resp.StatusCode)
	}
	if errMsg, _ := body["error"].(string); !strings.Contains(errMsg, "Rate limit exceeded") {
		t.Errorf("error = %q", errMsg)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	// reset 时间应在 1 小时以内
	reset, err := time.Parse(time.RFC3339, resp.Header.Get("X-RateLimit-Reset"))
	if err != nil {
		t.Fatalf("parse X-RateLimit-Reset: %v", err)
	}
	if until := time.Until(reset); until <= 0 || until > time.Hour {
		t.Errorf("reset in %v, want (0, 1h]", until)
	}
}

func TestAnalyze_DegradedLLMStillSucceeds(t *testing.T) {
	env := newTestEnv(t, 10, true)

	resp, body := env.get(t, "/analyze/technology", testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["success"] != true {
		t.Error("success != true in degraded mode")
	}
	if reportMD, _ := body["report"].(string); !strings.Contains(reportMD, "degraded mode") {
		t.Error("report missing degraded notice")
	}
}
