package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safeguardhq/safeguard/internal/config"
	domain "github.com/safeguardhq/safeguard/internal/domain/person"
	personrepo "github.com/safeguardhq/safeguard/internal/repository/person"
	"github.com/safeguardhq/safeguard/internal/service/watchdog"
)

// recordingSender counts deliveries without talking to any provider.
type recordingSender struct {
	sent int
}

func (r *recordingSender) Send(context.Context, string, string, string) error {
	r.sent++

	return nil
}

// TestNewRepository_FileBackend verifies the default backend selection.
func TestNewRepository_FileBackend(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{StoreBackend: "file"}

	repo, err := newRepository(context.Background(), cfg, filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	require.IsType(t, &personrepo.FileRepository{}, repo)
}

// TestServer_EndToEnd exercises the wired HTTP surface against a real file store.
func TestServer_EndToEnd(t *testing.T) {
	t.Parallel()

	repo := personrepo.NewFileRepository(filepath.Join(t.TempDir(), "users.json"))
	sender := new(recordingSender)

	service := watchdog.NewService(repo, sender, &watchdog.Options{
		DefaultWindow:      domain.Window{Start: "07:00", End: "08:30"},
		CountryCallingCode: "31",
	})

	e := newEcho(context.Background(), service)

	// Check in a new person.
	body := `{"user": "henk", "battery": 64}`
	request := httptest.NewRequest(http.MethodPost, "/api/ping", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	// The health endpoint now counts one monitored person.
	request = httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder = httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &health))
	require.InDelta(t, 1, health["activeUsers"], 0)

	// A fresh check-in is reported online.
	request = httptest.NewRequest(http.MethodGet, "/api/status/henk", nil)
	recorder = httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var status watchdog.Status
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &status))
	require.True(t, status.Online)

	// A pass right after a fresh check-in dispatches nothing.
	request = httptest.NewRequest(http.MethodPost, "/api/check-all", nil)
	recorder = httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Zero(t, sender.sent)
}
