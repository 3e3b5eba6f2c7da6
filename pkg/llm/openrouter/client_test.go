package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "resume-parser", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"a\":1}"}}]}`))
	}))
	defer srv.Close()

	c := New("key", srv.URL, "", "resume-parser", "", WithMaxTokens(1200))
	out, err := c.Ask(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	assert.Equal(t, defaultModel, got["model"])
	assert.Equal(t, float64(0), got["temperature"])
	assert.Equal(t, float64(1200), got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestAskHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := New("key", srv.URL, "m", "", "").Ask(context.Background(), "sys", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAskNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := New("key", srv.URL, "m", "", "").Ask(context.Background(), "", "hello")
	assert.Error(t, err)
}

func TestAskRequiresKey(t *testing.T) {
	_, err := New("", "", "", "", "").Ask(context.Background(), "", "hello")
	assert.Error(t, err)
}
