package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurovision/emotion-pipeline/pipeerr"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "message": {"role": "assistant", "content": "You look joyful and sound content."}
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18}
}`

func TestChatComplete(t *testing.T) {
	var (
		path string
		auth string
		body map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer srv.Close()

	c := NewChat("sk-test", srv.URL+"/v1/", time.Second)
	out, err := c.Complete(context.Background(), ChatRequest{
		Model: "gpt-4o-mini",
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "be kind"},
			{Role: RoleUser, Content: "how do I feel?"},
		},
		Temperature: 0.7,
		MaxTokens:   800,
	})
	require.NoError(t, err)

	assert.Equal(t, "You look joyful and sound content.", out)
	assert.True(t, strings.HasSuffix(path, "/chat/completions"), path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, 0.7, body["temperature"])
	assert.Equal(t, float64(800), body["max_tokens"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "how do I feel?", msgs[1].(map[string]any)["content"])
}

func TestChatCompleteFailures(t *testing.T) {
	cases := map[string]func(w http.ResponseWriter){
		"unauthorized": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
		},
		"no choices": func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[]}`)
		},
	}
	for name, respond := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { respond(w) }))
			defer srv.Close()

			_, err := NewChat("k", srv.URL+"/v1/", time.Second).Complete(context.Background(), ChatRequest{
				Model:    "gpt-4o-mini",
				Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
			})
			assert.ErrorIs(t, err, pipeerr.ErrTransport)
		})
	}
}

func TestChatRejectsUnknownRole(t *testing.T) {
	_, err := NewChat("k", "http://127.0.0.1:0/", time.Second).Complete(context.Background(), ChatRequest{
		Messages: []ChatMessage{{Role: "tool", Content: "x"}},
	})
	assert.Error(t, err)
}
