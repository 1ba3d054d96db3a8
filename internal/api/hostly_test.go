package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/npezzotti/go-hostly/internal/blobstore"
	"github.com/npezzotti/go-hostly/internal/config"
	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHostlyApp_Routes(t *testing.T) {
	_, mux := newTestApp(t, new(database.MockMarketplaceRepository))

	tcases := []struct {
		method  string
		path    string
		pattern string
	}{
		{http.MethodGet, "/healthz", "GET /healthz"},
		{http.MethodPost, "/api/auth/login", "POST /api/auth/login"},
		{http.MethodGet, "/api/listings/search", "GET /api/listings/search"},
		{http.MethodGet, "/api/listings/4", "GET /api/listings/{id}"},
		{http.MethodPatch, "/api/listings/4", "PATCH /api/listings/{id}"},
		{http.MethodGet, "/api/threads/3/hosting", "GET /api/threads/{userId}/hosting"},
		{http.MethodPost, "/api/messages", "POST /api/messages"},
		{http.MethodGet, "/api/messages/conversations/3", "GET /api/messages/conversations/{userId}"},
		{http.MethodGet, "/ws", "GET /ws"},
	}

	for _, tc := range tcases {
		t.Run(tc.pattern, func(t *testing.T) {
			_, pattern := mux.Handler(httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.pattern, pattern)
		})
	}
}

func TestNewHostlyApp_ServesUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))
	store, err := blobstore.NewLocalStore(dir, "http://localhost/uploads")
	require.NoError(t, err)

	mux := http.NewServeMux()
	app := NewHostlyApp(mux, testutil.TestLogger(t), nil, nil, nil, store, &config.Config{
		SigningKey:   testSigningKey,
		MessageRate:  1,
		MessageBurst: 1,
	})
	defer app.limiter.Shutdown()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/a.png", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, "png", string(body))
}

func TestNewHostlyApp_Cors(t *testing.T) {
	mux := http.NewServeMux()
	app := NewHostlyApp(mux, testutil.TestLogger(t), nil, nil, nil, nil, &config.Config{
		SigningKey:     testSigningKey,
		AllowedOrigins: []string{"http://app.example.com"},
		MessageRate:    1,
		MessageBurst:   1,
	})
	defer app.limiter.Shutdown()

	req := httptest.NewRequest(http.MethodOptions, "/api/listings/4", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	app.srv.Handler.ServeHTTP(rr, req)

	assert.Equal(t, "http://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get(requestIdHeader))
}
