package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Complete(t *testing.T) {
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": `{"content":"ok"}`},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithModel("test-model"), WithAPIKey("test-key"))
	resp, err := c.Complete(context.Background(), Request{
		System:          "you are an analyst",
		Prompt:          "analyze this",
		Temperature:     0.2,
		MaxOutputTokens: 4096,
		ForceJSONObject: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"content":"ok"}`, resp.Content)
	assert.Equal(t, FinishStop, resp.FinishReason)
	assert.Equal(t, 150, resp.Usage.TotalTokens)

	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
}

func TestHTTPClient_FinishReasonPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "truncat"}, "finish_reason": "length"},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	resp, err := c.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, FinishLength, resp.FinishReason)
}

func TestHTTPClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestScripted_ReplaysAndRecords(t *testing.T) {
	s := NewScripted(
		Reply{Content: "one"},
		Reply{Content: "two", FinishReason: FinishLength},
	)

	r1, err := s.Complete(context.Background(), Request{Prompt: "first"})
	require.NoError(t, err)
	assert.Equal(t, "one", r1.Content)
	assert.Equal(t, FinishStop, r1.FinishReason)

	r2, err := s.Complete(context.Background(), Request{Prompt: "second"})
	require.NoError(t, err)
	assert.Equal(t, FinishLength, r2.FinishReason)

	_, err = s.Complete(context.Background(), Request{Prompt: "third"})
	require.Error(t, err, "script exhaustion must be an error")

	reqs := s.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "first", reqs[0].Prompt)
}
