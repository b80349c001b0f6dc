package llm

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}

// scripted serves one canned response per call, in order.
type scripted struct {
	t         *testing.T
	mu        sync.Mutex
	calls     int
	responses []func(w http.ResponseWriter, r *http.Request)
	requests  []chatRequest
	auth      []string
}

func (s *scripted) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	var cr chatRequest
	if err := json.NewDecoder(r.Body).Decode(&cr); err != nil {
		s.t.Errorf("decode request: %v", err)
	}
	s.requests = append(s.requests, cr)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	if i >= len(s.responses) {
		s.t.Errorf("unexpected call %d", i+1)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.responses[i](w, r)
}

func status(code int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(body))
	}
}

func ok(content string) func(http.ResponseWriter, *http.Request) {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return status(http.StatusOK, string(b))
}

func newTestClient(t *testing.T, url string, sl *recordingSleeper) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Token = "hf_test"
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg, zerolog.Nop(), WithSleeper(sl.sleep))
}

func TestSummarize_RateLimitedThenOK(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){
		status(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`),
		ok("  OK  "),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	sl := &recordingSleeper{}
	got, err := newTestClient(t, ts.URL, sl).Summarize(context.Background(), "ctx")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "OK" {
		t.Errorf("got %q, want OK", got)
	}
	if len(sl.waits) != 1 || sl.waits[0] != 20*time.Second {
		t.Errorf("waits = %v, want [20s]", sl.waits)
	}
	if srv.calls != 2 {
		t.Errorf("calls = %d, want 2", srv.calls)
	}
}

func TestSummarize_ModelLoadingUsesTransientWait(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){
		status(http.StatusServiceUnavailable, `<html>loading</html>`),
		status(http.StatusServiceUnavailable, `{"error":"Model is loading"}`),
		ok("done"),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	sl := &recordingSleeper{}
	got, _ := newTestClient(t, ts.URL, sl).Summarize(context.Background(), "ctx")
	if got != "done" {
		t.Errorf("got %q", got)
	}
	if len(sl.waits) != 2 || sl.waits[0] != 20*time.Second || sl.waits[1] != 20*time.Second {
		t.Errorf("waits = %v, want [20s 20s]", sl.waits)
	}
}

func TestSummarize_TransportFaultsExhaust(t *testing.T) {
	// A listener that is closed immediately yields connection errors.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	url := "http://" + ln.Addr().String() + "/v1/chat/completions"
	ln.Close()

	sl := &recordingSleeper{}
	got, err := newTestClient(t, url, sl).Summarize(context.Background(), "ctx")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != OverwhelmedMessage {
		t.Errorf("got %q, want overwhelmed message", got)
	}
	if len(sl.waits) != 2 {
		t.Fatalf("waits = %v, want exactly two", sl.waits)
	}
	for _, w := range sl.waits {
		if w != 10*time.Second {
			t.Errorf("wait %v, want 10s", w)
		}
	}
}

func TestNewClient_ZeroConfigWaits(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	url := "http://" + ln.Addr().String() + "/v1/chat/completions"
	ln.Close()

	sl := &recordingSleeper{}
	c := NewClient(Config{URL: url, Token: "x"}, zerolog.Nop(), WithSleeper(sl.sleep))
	got, err := c.Summarize(context.Background(), "ctx")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != OverwhelmedMessage {
		t.Errorf("got %q, want overwhelmed message", got)
	}
	want := []time.Duration{10 * time.Second, 10 * time.Second}
	if !reflect.DeepEqual(sl.waits, want) {
		t.Errorf("waits = %v, want %v", sl.waits, want)
	}
	if c.cfg.TransientWait != 20*time.Second {
		t.Errorf("TransientWait = %v, want 20s", c.cfg.TransientWait)
	}
}

func TestSummarize_TimeoutIsTransportFault(t *testing.T) {
	release := make(chan struct{})
	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){slow, ok("recovered")}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer close(release)

	sl := &recordingSleeper{}
	cfg := DefaultConfig()
	cfg.URL = ts.URL
	cfg.Timeout = 100 * time.Millisecond
	got, err := NewClient(cfg, zerolog.Nop(), WithSleeper(sl.sleep)).Summarize(context.Background(), "ctx")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "recovered" {
		t.Errorf("got %q", got)
	}
	if len(sl.waits) != 1 || sl.waits[0] != 10*time.Second {
		t.Errorf("waits = %v, want [10s]", sl.waits)
	}
}

func TestSummarize_PermanentErrorNoRetry(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){
		status(http.StatusUnauthorized, `{"error":{"message":"Invalid credentials in Authorization header"}}`),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	sl := &recordingSleeper{}
	got, err := newTestClient(t, ts.URL, sl).Summarize(context.Background(), "ctx")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := "API Error 401: Invalid credentials in Authorization header"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(sl.waits) != 0 || srv.calls != 1 {
		t.Errorf("expected a single call and no waits, got calls=%d waits=%v", srv.calls, sl.waits)
	}
}

func TestSummarize_PermanentErrorUnknownMessage(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){
		status(http.StatusBadRequest, `not json`),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, _ := newTestClient(t, ts.URL, &recordingSleeper{}).Summarize(context.Background(), "ctx")
	if got != "API Error 400: Unknown error" {
		t.Errorf("got %q", got)
	}
}

func TestSummarize_MalformedSuccessRetries(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){
		status(http.StatusOK, `{"choices":[]}`),
		ok("second time"),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	sl := &recordingSleeper{}
	got, _ := newTestClient(t, ts.URL, sl).Summarize(context.Background(), "ctx")
	if got != "second time" {
		t.Errorf("got %q", got)
	}
	if len(sl.waits) != 1 || sl.waits[0] != 10*time.Second {
		t.Errorf("waits = %v, want [10s]", sl.waits)
	}
}

func TestSummarize_RequestShape(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){ok("fine")}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := newTestClient(t, ts.URL, &recordingSleeper{}).Summarize(context.Background(), "Primary Diagnoses:\n- CHF")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	req := srv.requests[0]
	if req.Model != DefaultModel || req.MaxTokens != 500 || req.Stream {
		t.Errorf("unexpected request options: %+v", req)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != SystemPrompt {
		t.Errorf("system message = %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || !strings.HasSuffix(req.Messages[1].Content, "Primary Diagnoses:\n- CHF") {
		t.Errorf("user message = %+v", req.Messages[1])
	}
	if srv.auth[0] != "Bearer hf_test" {
		t.Errorf("Authorization = %q", srv.auth[0])
	}
}

func TestSummarize_ContextCanceledDuringBackoff(t *testing.T) {
	srv := &scripted{t: t, responses: []func(http.ResponseWriter, *http.Request){
		status(http.StatusServiceUnavailable, `{}`),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.URL = ts.URL
	sleeper := func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	_, err := NewClient(cfg, zerolog.Nop(), WithSleeper(sleeper)).Summarize(ctx, "ctx")
	if !IsCanceled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}
