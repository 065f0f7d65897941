package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/use-agent/finspider/config"
	"github.com/use-agent/finspider/models"
)

func testClient(serverURL string) *Client {
	return NewClient(config.LLMConfig{
		APIKey:            "test-key",
		Model:             "test-model",
		BaseURL:           serverURL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, nil)
}

func chatReply(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestComplete_Success(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(chatReply(`{"ok":true}`)))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Complete(context.Background(), "extract", true)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if raw != `{"ok":true}` {
		t.Errorf("unexpected reply: %q", raw)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("unexpected model: %q", gotReq.Model)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("temperature must be 0, got %v", gotReq.Temperature)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("wantJSON must request a json_object response, got %+v", gotReq.ResponseFormat)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", gotReq.Messages)
	}
}

func TestComplete_NoResponseFormatForText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat != nil {
			t.Errorf("text completion must not request a response format")
		}
		w.Write([]byte(chatReply("free text")))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Complete(context.Background(), "describe", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if raw != "free text" {
		t.Errorf("unexpected reply: %q", raw)
	}
}

func TestComplete_InvalidJSONRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(chatReply("not json at all")))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "extract", true)
	if !models.IsCode(err, models.ErrCodeLLMFailure) {
		t.Errorf("expected LLM_FAILURE, got %v", err)
	}
}

func TestComplete_AuthErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "extract", true)
	if !models.IsCode(err, models.ErrCodeLLMAuthFailure) {
		t.Errorf("expected LLM_AUTH_FAILURE, got %v", err)
	}
	if models.Retryable(err) {
		t.Error("auth failures must not be retryable")
	}
}

func TestComplete_RateLimitErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "extract", true)
	if !models.IsCode(err, models.ErrCodeLLMRateLimited) {
		t.Errorf("expected LLM_RATE_LIMITED, got %v", err)
	}
	if !models.Retryable(err) {
		t.Error("rate limiting must stay retryable")
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "extract", false)
	if !models.IsCode(err, models.ErrCodeLLMFailure) {
		t.Errorf("expected LLM_FAILURE, got %v", err)
	}
}
