package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fibertrack/internal/logging"
	"evalgo.org/fibertrack/internal/storage"
)

// serve sends a raw request through the full middleware chain.
func serve(srv *Server, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func statusOf(t *testing.T, srv *Server, path string) string {
	t.Helper()

	code, env := do(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	var rec struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	return rec.Status
}

func TestContentTypeGate(t *testing.T) {
	srv := newTestServer(t)
	ids := seedChain(t, srv)
	cable := fmt.Sprintf("/api/v1/cables/%d", ids["cable"])

	// lifecycle PATCHes carry no body and no Content-Type
	rec := serve(srv, http.MethodPatch, cable+"/archive", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "archived", statusOf(t, srv, cable))

	bulk := `{"action":"delete","ids":[` + fmt.Sprint(ids["core"]) + `]}`
	rec = serve(srv, http.MethodPost, "/api/v1/cores/bulk", map[string]string{
		echo.HeaderContentType: "text/plain",
	}, bulk)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Content-Type")

	code, env := do(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/cores/%d", ids["core"]), nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), `"deleted_at":"`, "rejected bulk must not run")

	rec = serve(srv, http.MethodPut, cable, map[string]string{
		echo.HeaderContentType: "application/json; charset=utf-8",
	}, `{"name":"C-1 renamed"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(srv, http.MethodPost, "/api/v1/locations", map[string]string{
		echo.HeaderContentType: "application/x-www-form-urlencoded",
	}, "name=Site+B")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptGate(t *testing.T) {
	srv := newTestServer(t)
	seedChain(t, srv)

	tests := []struct {
		accept string
		want   int
	}{
		{"", http.StatusOK},
		{"application/json", http.StatusOK},
		{"*/*", http.StatusOK},
		{"application/*", http.StatusOK},
		{"text/html,application/json;q=0.9,*/*;q=0.8", http.StatusOK},
		{"text/html", http.StatusBadRequest},
		{"application/xml", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			headers := map[string]string{}
			if tt.accept != "" {
				headers[echo.HeaderAccept] = tt.accept
			}
			rec := serve(srv, http.MethodGet, "/api/v1/cores", headers, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestIDFormatOnRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"zero", "/api/v1/cables/0", http.StatusBadRequest},
		{"negative", "/api/v1/tubes/-1", http.StatusBadRequest},
		{"non-numeric", "/api/v1/cores/abc/children", http.StatusBadRequest},
		{"overflow", "/api/v1/locations/" + strings.Repeat("9", 30), http.StatusBadRequest},
		{"well formed but absent", "/api/v1/cables/42", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/health", nil, "")
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	rec = serve(srv, http.MethodGet, "/health", map[string]string{
		echo.HeaderXRequestID: "upstream-id",
	}, "")
	assert.Equal(t, "upstream-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestSecurityHeadersOnErrors(t *testing.T) {
	srv := newTestServer(t)

	// headers are set before the handler runs, so error responses carry them too
	rec := serve(srv, http.MethodGet, "/api/v1/cables/42", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

// lockedBuffer is written by the request path and the event hub at once.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRequestLoggerSeesHandlerErrors(t *testing.T) {
	cfg := testConfig()
	require.True(t, cfg.Metrics.Enabled)

	var buf lockedBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store, err := storage.New(cfg, logging.Noop())
	require.NoError(t, err)
	srv, err := New(cfg, store, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})

	rec := serve(srv, http.MethodGet, "/api/v1/cables/42", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var line struct {
		Msg    string `json:"msg"`
		Status int    `json:"status"`
		Error  string `json:"error"`
	}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(raw, `"uri":"/api/v1/cables/42"`) {
			require.NoError(t, json.Unmarshal([]byte(raw), &line))
		}
	}
	assert.Equal(t, "request failed", line.Msg)
	assert.Equal(t, http.StatusNotFound, line.Status)
	assert.NotEmpty(t, line.Error)
}
