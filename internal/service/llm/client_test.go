package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, reply string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
		})
	}))
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	var captured chatRequest
	srv := newChatServer(t, `{"Class":"Booked"}`, &captured)
	defer srv.Close()

	c := NewOpenAI("test-key", srv.URL+"/v1")

	msgs := []Message{
		{Role: RoleSystem, Content: "answer from transcript only"},
		{Role: RoleUser, Content: "the transcript"},
		{Role: RoleUser, Content: "was it booked?"},
	}
	got, err := c.Complete(context.Background(), msgs, "gpt-4o-mini", DefaultTemperature)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"Class":"Booked"}` {
		t.Errorf("unexpected reply: %q", got)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("expected model in request, got %q", captured.Model)
	}
	if len(captured.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" || captured.Messages[2].Role != "user" {
		t.Errorf("unexpected role order: %+v", captured.Messages)
	}
	if captured.Temperature != 0 {
		t.Errorf("expected temperature omitted for default, got %v", captured.Temperature)
	}
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	var captured chatRequest
	srv := newChatServer(t, "ok", &captured)
	defer srv.Close()

	c := NewOpenAI("test-key", srv.URL+"/v1")

	if _, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "gpt-4o-mini", 0); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if captured.Temperature <= 0 || captured.Temperature > 1e-6 {
		t.Errorf("expected near-zero temperature on the wire, got %v", captured.Temperature)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", srv.URL+"/v1")

	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "gpt-4o-mini", 0)
	if err == nil {
		t.Fatal("expected error for rate-limited request")
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T", err)
	}
	if svcErr.Model != "gpt-4o-mini" {
		t.Errorf("expected model on error, got %q", svcErr.Model)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "chatcmpl-1", "object": "chat.completion", "choices": []any{}})
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", srv.URL+"/v1")

	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "gpt-4o-mini", 0)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
