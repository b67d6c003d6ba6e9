package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/api/handlers"
	"github.com/yourusername/flix-offline-go/internal/app"
	"github.com/yourusername/flix-offline-go/internal/domain"
	"github.com/yourusername/flix-offline-go/internal/infrastructure"
	"github.com/yourusername/flix-offline-go/pkg/logger"
)

type testServer struct {
	router  *gin.Engine
	manager *app.DownloadManager
	cache   *app.ContentCache
}

func setupTestServer(t *testing.T, multiLogger *logger.MultiLogger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slot, err := infrastructure.NewFileSlot(afero.NewMemMapFs(), "/data", "downloads")
	require.NoError(t, err)

	config := domain.DefaultConfig().Simulation
	config.TickInterval = time.Hour // ticks are exercised in the app package

	manager := app.NewDownloadManager(
		infrastructure.NewSnapshotStore(slot),
		app.NewViewProjector(),
		nil,
		&config,
		zap.NewNop(),
	)
	t.Cleanup(manager.Close)

	cache := app.NewContentCache(time.Minute)
	router := SetupRouter(manager, cache, logger.NewLoggerAdapter(zap.NewNop(), multiLogger))
	return &testServer{router: router, manager: manager, cache: cache}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health handlers.HealthResponse
	decode(t, w, &health)
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.Engine.Running)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/ready", nil).Code)
	s.manager.Close()
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/ready", nil).Code)
}

func TestSession(t *testing.T) {
	s := setupTestServer(t, nil)

	w := s.do(t, http.MethodPut, "/api/v1/session", handlers.SessionRequest{AccountID: "acct", ProfileID: "main"})
	require.Equal(t, http.StatusOK, w.Code)
	var session handlers.SessionResponse
	decode(t, w, &session)
	assert.True(t, session.HasProfile)
	assert.Equal(t, domain.ResolveOwner("acct", "main"), s.manager.ActiveOwner())

	w = s.do(t, http.MethodDelete, "/api/v1/session", nil)
	decode(t, w, &session)
	assert.False(t, session.HasProfile)
}

func TestStartDownload_RequiresProfile(t *testing.T) {
	s := setupTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/downloads", map[string]string{"content_id": "tt1", "title": "Heat"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, s.manager.ActiveTimers())

	w = s.do(t, http.MethodPost, "/api/v1/downloads", map[string]string{"title": "Heat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartDownload_ActiveOwnerLifecycle(t *testing.T) {
	s := setupTestServer(t, nil)
	s.manager.SetActiveOwner("acct", "main")

	w := s.do(t, http.MethodPost, "/api/v1/downloads", map[string]string{"content_id": "tt1", "title": "Heat"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Download
	decode(t, w, &created)
	assert.Equal(t, domain.StateDownloading, created.State)
	assert.Equal(t, 0, created.ProgressPercent)
	require.NotNil(t, created.RemainingEstimate)
	assert.Equal(t, domain.CalculatingLabel, *created.RemainingEstimate)
	assert.NotEmpty(t, created.SizeLabel)

	w = s.do(t, http.MethodGet, "/api/v1/downloads", nil)
	var list handlers.DownloadListResponse
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = s.do(t, http.MethodPost, "/api/v1/downloads/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paused"`)

	w = s.do(t, http.MethodGet, "/api/v1/downloads/stats", nil)
	var stats domain.DownloadStats
	decode(t, w, &stats)
	assert.Equal(t, domain.DownloadStats{Total: 1, Paused: 1}, stats)

	w = s.do(t, http.MethodDelete, "/api/v1/downloads/"+created.ID, nil)
	assert.Contains(t, w.Body.String(), `"removed":true`)
	w = s.do(t, http.MethodDelete, "/api/v1/downloads/"+created.ID, nil)
	assert.Contains(t, w.Body.String(), `"removed":false`)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/downloads/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/v1/downloads/"+created.ID+"/toggle", nil).Code)
}

func TestStartDownload_UsesCatalogCache(t *testing.T) {
	s := setupTestServer(t, nil)
	season := "Season 3"

	w := s.do(t, http.MethodPut, "/api/v1/catalog/tt9", domain.ContentDescriptor{
		Title:       "Dark",
		ImageURL:    "https://img.example/dark.jpg",
		SeasonLabel: &season,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"series"`)

	w = s.do(t, http.MethodPost, "/api/v1/downloads", map[string]string{
		"content_id": "tt9",
		"account_id": "acct",
		"profile_id": "kids",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Download
	decode(t, w, &created)
	assert.Equal(t, "Dark", created.Title)
	assert.Equal(t, domain.KindSeries, created.Kind)
	require.NotNil(t, created.SeasonLabel)
	assert.Equal(t, season, *created.SeasonLabel)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/catalog/tt9", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/catalog/tt9", nil).Code)
}

func TestOwnerEndpoints(t *testing.T) {
	s := setupTestServer(t, nil)
	desc := domain.ContentDescriptor{ContentID: "tt1", Title: "Heat"}
	_, ok := s.manager.Start(desc, "acct", "main")
	require.True(t, ok)
	_, ok = s.manager.Start(desc, "acct", "kids")
	require.True(t, ok)

	w := s.do(t, http.MethodGet, "/api/v1/owners/acct/main/downloads", nil)
	var list handlers.DownloadListResponse
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = s.do(t, http.MethodDelete, "/api/v1/owners/acct/main/downloads", nil)
	assert.Contains(t, w.Body.String(), `"removed":1`)
	assert.Empty(t, s.manager.ListFor("acct", "main"))
	assert.Len(t, s.manager.ListFor("acct", "kids"), 1)
}

func TestCORSPreflight(t *testing.T) {
	s := setupTestServer(t, nil)
	w := s.do(t, http.MethodOptions, "/api/v1/downloads", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestViewStream(t *testing.T) {
	s := setupTestServer(t, nil)
	server := httptest.NewServer(s.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/downloads/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() handlers.ViewMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg handlers.ViewMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Empty(t, read().Downloads)

	s.manager.SetActiveOwner("acct", "main")
	_, ok := s.manager.StartActive(domain.ContentDescriptor{ContentID: "tt1", Title: "Heat"})
	require.True(t, ok)

	// Views are latest-value; skip intermediate frames until the start shows up
	deadline := time.Now().Add(2 * time.Second)
	started := false
	for !started && time.Now().Before(deadline) {
		msg := read()
		if len(msg.Downloads) == 1 {
			assert.Equal(t, domain.ResolveOwner("acct", "main"), msg.Owner)
			assert.Equal(t, 1, msg.Stats.Downloading)
			started = true
		}
	}
	require.True(t, started, "stream never delivered the started download")

	// every frame names the owner its downloads belong to
	kids := s.manager.SetActiveOwner("acct", "kids")
	for time.Now().Before(deadline) {
		msg := read()
		for _, d := range msg.Downloads {
			assert.Equal(t, d.Owner, msg.Owner)
		}
		if msg.Owner == kids {
			assert.Empty(t, msg.Downloads)
			return
		}
	}
	t.Fatal("stream never switched to the new owner")
}

func TestLogEndpoints(t *testing.T) {
	multiLogger, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: t.TempDir()})
	require.NoError(t, err)
	defer multiLogger.Close()

	s := setupTestServer(t, multiLogger)
	multiLogger.LogEngineEvent("download_started", zap.String("id", "abc"))
	require.NoError(t, multiLogger.Sync())

	w := s.do(t, http.MethodGet, "/api/v1/logs/categories", nil)
	assert.Contains(t, w.Body.String(), `"engine"`)

	w = s.do(t, http.MethodGet, "/api/v1/logs/engine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "download_started")

	w = s.do(t, http.MethodGet, "/api/v1/logs/engine/search?q=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/logs/web", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/logs/engine/search", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/logs/engine?date=yesterday", nil).Code)
}

func TestLogEndpoints_DisabledWithoutMultiLogger(t *testing.T) {
	s := setupTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/logs/categories", nil).Code)
}
