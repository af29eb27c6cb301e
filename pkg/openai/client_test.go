package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/savaki/christine-bot/pkg/models"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, captured *chatRequest, hits *int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", got)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestReply(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "first choice content",
			status: http.StatusOK,
			body: `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
				"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"You have 9 months of runway."}}]}`,
			want: "You have 9 months of runway.",
		},
		{
			name:   "zero choices falls back",
			status: http.StatusOK,
			body:   `{"id":"chatcmpl-2","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`,
			want:   models.FallbackReply,
		},
		{
			name:   "null content falls back",
			status: http.StatusOK,
			body: `{"id":"chatcmpl-3","object":"chat.completion","created":1,"model":"gpt-4o-mini",
				"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":null}}]}`,
			want: models.FallbackReply,
		},
		{
			name:    "auth error propagates",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			srv := newTestServer(t, tt.status, tt.body, nil, &hits)
			c := NewClient("sk-test", "", srv.URL+"/")

			got, err := c.Reply(context.Background(), "system", "user")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Reply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Reply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplyRequestShape(t *testing.T) {
	var (
		hits     int32
		captured chatRequest
	)
	srv := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`, &captured, &hits)
	c := NewClient("sk-test", "", srv.URL+"/")

	if _, err := c.Reply(context.Background(), "be a CFO", "What's our runway?"); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if captured.Model != DefaultModel {
		t.Errorf("model = %s, want %s", captured.Model, DefaultModel)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(captured.Messages))
	}
	if captured.Messages[0].Role != models.RoleSystem || captured.Messages[0].Content != "be a CFO" {
		t.Errorf("messages[0] = %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != models.RoleUser || captured.Messages[1].Content != "What's our runway?" {
		t.Errorf("messages[1] = %+v", captured.Messages[1])
	}
}

func TestReplyDoesNotRetry(t *testing.T) {
	var hits int32
	srv := newTestServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`, nil, &hits)
	c := NewClient("sk-test", "", srv.URL+"/")

	if _, err := c.Reply(context.Background(), "system", "user"); err == nil {
		t.Fatal("Reply() should fail on a 500 response")
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("upstream requests = %d, want 1", got)
	}
}

func TestNewClientModel(t *testing.T) {
	if got := NewClient("sk", "", "").ModelID(); got != DefaultModel {
		t.Errorf("ModelID() = %s, want %s", got, DefaultModel)
	}
	if got := NewClient("sk", "gpt-4.1", "").ModelID(); got != "gpt-4.1" {
		t.Errorf("ModelID() = %s, want gpt-4.1", got)
	}
}
