package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-formbuilder/pkg/builder"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	exports  *prometheus.CounterVec
	imports  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, b *builder.Builder) *metrics {
	factory := promauto.With(reg)
	m := &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formbuilder",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formbuilder",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formbuilder",
			Name:      "exports_total",
			Help:      "Generated downloads by kind and format.",
		}, []string{"kind", "format"}),
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formbuilder",
			Name:      "imports_total",
			Help:      "Field list imports by result.",
		}, []string{"result"}),
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "formbuilder",
		Name:      "fields",
		Help:      "Fields currently defined.",
	}, func() float64 { return float64(len(b.Fields())) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "formbuilder",
		Name:      "records",
		Help:      "Records saved in this session.",
	}, func() float64 { return float64(len(b.Records())) })
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument is a mux middleware recording request counts and latency under
// the matched route template.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
	})
}
