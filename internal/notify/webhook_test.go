package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookNotifierPostsText(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), "hello operator"))
	assert.Equal(t, "application/json", gotContentType)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "hello operator", payload["text"])
}

func TestWebhookNotifierNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, n.Notify(context.Background(), "nope"))
}

func TestWebhookNotifierRequiresURL(t *testing.T) {
	_, err := NewWebhookNotifier("", zap.NewNop())
	assert.Error(t, err)
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.NoError(t, n.Notify(context.Background(), "to the log"))
}
