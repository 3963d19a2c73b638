package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"circuitech-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestGroqProvider_Chat_RequestShape(t *testing.T) {
	var gotReq groqChatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", "llama-3.3-70b-versatile", srv.URL)
	out, err := p.Chat(context.Background(),
		[]llm.Message{
			{Role: "system", Content: "instructions"},
			{Role: "model", Content: "previous reply"},
			{Role: "user", Content: "question"},
		},
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)

	assert.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama-3.3-70b-versatile", gotReq.Model)
	assert.Equal(t, 0.2, gotReq.Temperature)
	if assert.NotNil(t, gotReq.ResponseFormat) {
		assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	}

	// Non-OpenAI role names are normalized.
	assert.Equal(t, "assistant", gotReq.Messages[1].Role)
}

func TestGroqProvider_Chat_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", "m", srv.URL)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "q"}})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGroqProvider_Chat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", "m", srv.URL)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "q"}})

	assert.Error(t, err)
}
