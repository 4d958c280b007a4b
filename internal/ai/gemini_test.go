package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGeminiForServer(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewGeminiProvider("test-key", zap.NewNop())
	p.baseURL = srv.URL
	return p
}

func TestGeminiProvider_Success(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  hello there  "}]}}]}`))
	})

	res := p.Generate(context.Background(), "prompt")
	require.Equal(t, Answer, res.Kind)
	assert.Equal(t, "hello there", res.Text)
	assert.False(t, res.Failed())
}

func TestGeminiProvider_NonOKStatus(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, ProviderError, res.Kind)
	assert.True(t, res.Failed())
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, MalformedResponse, res.Kind)
}

func TestGeminiProvider_InvalidJSON(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, MalformedResponse, res.Kind)
}

func TestGeminiProvider_BlankText(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`))
	})

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, EmptyResponse, res.Kind)
}

func TestGeminiProvider_Timeout(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	p.client.Timeout = 20 * time.Millisecond

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, Timeout, res.Kind)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Message(), "زمان پاسخ")
}

func TestGeminiProvider_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	p := NewGeminiProvider("test-key", zap.NewNop())
	p.baseURL = srv.URL
	srv.Close() // refuse the connection outright

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, TransportError, res.Kind)
	assert.Contains(t, res.Message(), "خطای داخلی")
}

func TestGeminiProvider_NoPartsHasDistinctMessage(t *testing.T) {
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]}}]}`))
	})

	res := p.Generate(context.Background(), "prompt")
	assert.Equal(t, MalformedResponse, res.Kind)
	assert.Equal(t, "❌ پاسخ نامعتبری دریافت شد.", res.Message())
}

func TestService_UnconfiguredSkipsNetwork(t *testing.T) {
	svc := NewService(nil)

	res := svc.Ask(context.Background(), "what is AI?", "Sara")
	assert.Equal(t, Unconfigured, res.Kind)
	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.Message())
}

func TestService_PromptEmbedsQuestionAndName(t *testing.T) {
	var seen string
	p := newGeminiForServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = req.Contents[0].Parts[0].Text
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	svc := NewService(p)
	res := svc.Ask(context.Background(), "what is AI?", "Sara")
	require.Equal(t, Answer, res.Kind)
	assert.Contains(t, seen, "what is AI?")
	assert.Contains(t, seen, "Sara")
}

func TestResult_FailureMessagesCarryMarkers(t *testing.T) {
	for _, kind := range []Kind{Unconfigured, Timeout, TransportError, ProviderError, MalformedResponse, EmptyResponse} {
		msg := Result{Kind: kind}.Message()
		assert.NotEmpty(t, msg)
		assert.True(t, Result{Kind: kind}.Failed())
	}

	// A timed-out call and a refused connection read differently to the user.
	assert.NotEqual(t, Result{Kind: Timeout}.Message(), Result{Kind: TransportError}.Message())

	ok := Result{Kind: Answer, Text: "answer"}
	assert.Equal(t, "answer", ok.Message())
}
