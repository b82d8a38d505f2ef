package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/robalobadob/companion/internal/chat"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int64    `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func fakeCompletions(t *testing.T, content string, status int) (*httptest.Server, *capturedRequest, *int32) {
	t.Helper()
	var got capturedRequest
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		choices := `[]`
		if content != "" {
			b, _ := json.Marshal(content)
			choices = `[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(b) + `}}]`
		}
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":` + choices + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &hits
}

func TestComplete_NotConfigured(t *testing.T) {
	srv, _, hits := fakeCompletions(t, "unused", http.StatusOK)
	c := NewClient(Config{BaseURL: srv.URL + "/v1/"})
	if c.Configured() {
		t.Fatal("client without key reports configured")
	}
	_, err := c.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
	if !errors.Is(err, chat.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatal("unconfigured client made a request")
	}
}

func TestComplete_SendsConversation(t *testing.T) {
	srv, got, _ := fakeCompletions(t, "Moof! Hi!", http.StatusOK)
	cfg := DefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/v1/"
	c := NewClient(cfg)

	reply, err := c.Complete(context.Background(), []chat.Turn{
		{Role: chat.RoleSystem, Content: "persona"},
		{Role: chat.RoleAssistant, Content: "greeting"},
		{Role: chat.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "Moof! Hi!" {
		t.Fatalf("reply = %q", reply)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 500 || got.Temperature == nil || *got.Temperature != 0.7 {
		t.Fatalf("params = %+v", got)
	}
	wantRoles := []string{"system", "assistant", "user"}
	if len(got.Messages) != len(wantRoles) {
		t.Fatalf("messages = %+v", got.Messages)
	}
	for i, r := range wantRoles {
		if got.Messages[i].Role != r {
			t.Fatalf("message %d role = %q, want %q", i, got.Messages[i].Role, r)
		}
	}
	if got.Messages[2].Content != "hi" {
		t.Fatalf("user content = %q", got.Messages[2].Content)
	}
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	srv, got, _ := fakeCompletions(t, "Moof.", http.StatusOK)
	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Temperature: 0})
	if _, err := c.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Temperature == nil || *got.Temperature != 0 {
		t.Fatalf("temperature = %v, want 0", got.Temperature)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv, _, hits := fakeCompletions(t, "", http.StatusInternalServerError)
	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	if _, err := c.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("requests = %d, want a single attempt", n)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv, _, _ := fakeCompletions(t, "", http.StatusOK)
	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	_, err := c.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
	if !errors.Is(err, chat.ErrEmptyReply) {
		t.Fatalf("err = %v, want ErrEmptyReply", err)
	}
}
