package dictapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peredict_api_requests_total",
			Help: "Total number of dictionary API requests",
		},
		[]string{"backend", "endpoint", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "peredict_api_request_duration_seconds",
			Help:    "Duration of dictionary API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"backend", "endpoint"},
	)
)

// observeRequest records one finished API request.
func observeRequest(backend, endpoint string, start time.Time, err error) {
	apiRequestsTotal.WithLabelValues(backend, endpoint, statusLabel(err)).Inc()
	apiRequestDuration.WithLabelValues(backend, endpoint).Observe(time.Since(start).Seconds())
}

func statusLabel(err error) string {
	var serverErr *ServerError
	var transportErr *TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &serverErr):
		return strconv.Itoa(serverErr.Code)
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "error"
	}
}
