package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(PrometheusMiddleware())
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", Handler())

	before := testutil.CollectAndCount(HTTPRequestDuration)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(HTTPRequestDuration), before)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `route="/orders/:id"`), "histogram should be labelled with the route template")
	assert.False(t, strings.Contains(body, "/orders/abc"), "raw paths must not become label values")
}
