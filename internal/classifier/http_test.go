package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/action"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestHTTPClient_Classify(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatReply(`{"is_action": true, "kind": "add_expense", "confidence": 0.8,
			"payload": {"amount": 1200, "description": "electricity bill", "category": "Electricity"}}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{Endpoint: srv.URL, Model: "test-model", APIKey: "sk-test"}, nil)
	require.NoError(t, err)

	intent, err := c.Classify(context.Background(), Request{
		Text:      "paid 1200 for electricity",
		Locale:    "en",
		ItemNames: []string{"Rice", "Milk"},
	})
	require.NoError(t, err)
	assert.Equal(t, action.AddExpense, intent.Kind())
	assert.Equal(t, 0.8, intent.Confidence)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "Rice, Milk")
	assert.Equal(t, "paid 1200 for electricity", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestHTTPClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{Endpoint: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), Request{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.False(t, IsClassificationError(err))
}

func TestHTTPClient_MalformedReplyIsClassificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatReply("I am not sure what you mean"))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{Endpoint: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), Request{Text: "hmm"})
	assert.True(t, IsClassificationError(err))
}

func TestHTTPClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{Endpoint: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), Request{Text: "hmm"})
	assert.True(t, IsClassificationError(err))
}

func TestHTTPClient_RateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(chatReply(`{"is_action": false}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPConfig{Endpoint: srv.URL, Model: "m", RatePerSecond: 0.001, Burst: 1}, nil)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), Request{Text: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Classify(ctx, Request{Text: "second"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewHTTPClient_RequiresModel(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{}, nil)
	assert.Error(t, err)
}

func TestScripted(t *testing.T) {
	s, err := NewScripted()
	require.NoError(t, err)
	s.Reply("sold 5 rice at 30", `{"is_action": true, "kind": "add_sale",
		"payload": {"items": [{"name": "Rice", "quantity": 5, "price": 30}]}}`)

	intent, err := s.Classify(context.Background(), Request{Text: "sold 5 rice at 30"})
	require.NoError(t, err)
	assert.Equal(t, action.AddSale, intent.Kind())

	intent, err = s.Classify(context.Background(), Request{Text: "how much rice is left?"})
	require.NoError(t, err)
	assert.False(t, intent.IsAction)

	assert.Len(t, s.Calls(), 2)
}
