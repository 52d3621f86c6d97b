package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompteria-api/metrics"
)

func TestRecordLike(t *testing.T) {
	m := metrics.New()

	m.RecordLike(true)
	m.RecordLike(true)
	m.RecordLike(false)

	assert.InDelta(t, 2, testutil.ToFloat64(m.LikeToggles.WithLabelValues(metrics.ActionLiked)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LikeToggles.WithLabelValues(metrics.ActionUnliked)), 0)
}

func TestRecordViewAndCache(t *testing.T) {
	m := metrics.New()

	m.RecordView()
	m.RecordListCache(true)
	m.RecordListCache(false)
	m.RecordListCache(false)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Views), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ListCacheHits), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ListCacheMisses), 0)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/prompt/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/prompt/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `route="/prompt/:id"`)
	assert.Contains(t, string(body), "go_goroutines")
}
