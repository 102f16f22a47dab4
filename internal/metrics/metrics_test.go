package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/rooms/{id}", "404"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/rooms/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/rooms/{id}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordBookingTransition(t *testing.T) {
	before := testutil.ToFloat64(bookingTransitions.WithLabelValues("approved"))
	RecordBookingTransition("approved", 3)
	RecordBookingTransition("approved", 0)
	assert.Equal(t, 3.0, testutil.ToFloat64(bookingTransitions.WithLabelValues("approved"))-before)
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordJobRun("expire_pending", true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roombooking_jobs_runs_total")
}
