package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTrigger verifies one evaluation request and its summary handling.
func TestTrigger(t *testing.T) {
	t.Parallel()

	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/check-all", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "complete", "alerts": 1}`))
	}))
	defer server.Close()

	client := &http.Client{Timeout: time.Second}

	err := trigger(context.Background(), client, server.URL+"/api/check-all")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

// TestTrigger_ServerError surfaces non-200 responses as errors.
func TestTrigger_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &http.Client{Timeout: time.Second}

	err := trigger(context.Background(), client, server.URL+"/api/check-all")
	require.Error(t, err)
}
