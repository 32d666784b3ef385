// internal/httpserver/server_test.go
package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	cfg "github.com/tamzrod/flogmeter/internal/config"
)

func init() { gin.SetMode(gin.TestMode) }

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	ready := false
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("flogmeter_samples_total 8\n"))
	})

	s := New(cfg.HTTPConfig{Addr: ":0"}, "", Hooks{
		Ready:   func() bool { return ready },
		Status:  func() any { return map[string]any{"health": "ok", "samples": 8} },
		Metrics: metrics,
	})
	h := s.Handler()

	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)

	ready = true
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)

	st := get(h, "/status")
	assert.Equal(t, http.StatusOK, st.Code)
	assert.JSONEq(t, `{"health":"ok","samples":8}`, st.Body.String())

	m := get(h, "/metrics")
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "flogmeter_samples_total 8")
}

func TestNoStatusHook(t *testing.T) {
	h := New(cfg.HTTPConfig{}, "/m", Hooks{}).Handler()
	assert.Equal(t, http.StatusNotFound, get(h, "/status").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/m").Code)
}
