package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/v1/courses/:courseId", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/courses/:courseId", "200"))

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/courses/:courseId", "200"))
	assert.Equal(t, before+2, after)
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(rentalsEnded.WithLabelValues("expired"))
	RecordRentalEnded("expired")
	assert.Equal(t, before+1, testutil.ToFloat64(rentalsEnded.WithLabelValues("expired")))

	beforeJob := testutil.ToFloat64(jobRuns.WithLabelValues("unknown", "true"))
	RecordJobRun("", 0, true)
	assert.Equal(t, beforeJob+1, testutil.ToFloat64(jobRuns.WithLabelValues("unknown", "true")))

	RecordRentalStarted()
	RecordEnrollment()
	RecordJobRun("rental-sweep", 20*time.Millisecond, false)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	RecordEnrollment()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "edustay_courses_enrollments_total"))
}
