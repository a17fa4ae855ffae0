package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	"github.com/arqgene/dockprep/internal/interfaces/http/handlers"
)

func TestRouterHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := prometheus.New()
	r := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler("test"),
		Logger:        logging.NewNopLogger(),
		Metrics:       m,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// The healthz hit above must show up in the exposition.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dockprep_http_requests_total")
}

func TestRouterSkipsNilHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{Logger: logging.NewNopLogger()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dock", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
