package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Olá!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL+"/v1", Settings{Model: DefaultOpenAIModel, Temperature: 0.7, MaxTokens: 1000})
	got, err := p.Complete(context.Background(), ChatContext, []Message{
		{Role: RoleUser, Content: "Oi"},
		{Role: RoleAssistant, Content: "Olá"},
		{Role: RoleUser, Content: "Tudo bem?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Olá!", got)

	assert.Equal(t, "gpt-3.5-turbo", body["model"])
	assert.EqualValues(t, 1000, body["max_tokens"])
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]interface{})["role"])
}

func TestOpenAIProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("x", srv.URL+"/v1", Settings{Model: DefaultOpenAIModel})
	_, err := p.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "Oi"}})
	assert.ErrorContains(t, err, "openai api error")
}

func TestAnthropicProvider(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Olá!"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 2}
		}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", srv.URL, Settings{Model: DefaultAnthropicModel, Temperature: 0.7, MaxTokens: 1000})
	got, err := p.Complete(context.Background(), ChatContext, []Message{{Role: RoleUser, Content: "Oi"}})
	require.NoError(t, err)
	assert.Equal(t, "Olá!", got)

	assert.EqualValues(t, 1000, body["max_tokens"])
	system := body["system"].([]interface{})
	assert.Equal(t, ChatContext, system[0].(map[string]interface{})["text"])
}
