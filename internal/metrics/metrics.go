package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Order outcomes recorded by OrderOutcome.
const (
	OrderCreated           = "created"
	OrderInsufficientStock = "insufficient_stock"
	OrderRejected          = "rejected"
)

type Metrics struct {
	registry   *prometheus.Registry
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   prometheus.Gauge
	orders     *prometheus.CounterVec
	soldUnits  prometheus.Counter
	logins     *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	orders := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "orders_total", Help: "Order submissions by outcome."}, []string{"outcome"})
	soldUnits := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "sold_units_total", Help: "Medicine units taken out of stock by committed orders."})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "logins_total", Help: "Login attempts by result."}, []string{"result"})
	r.MustRegister(orders, soldUnits, logins)

	return &Metrics{
		registry:   r,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		httpInfl:   httpInfl,
		orders:     orders,
		soldUnits:  soldUnits,
		logins:     logins,
	}
}

func (m *Metrics) OrderOutcome(outcome string) {
	m.orders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) UnitsSold(n int64) {
	m.soldUnits.Add(float64(n))
}

func (m *Metrics) Login(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// Middleware records request counts and latencies labelled by the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInfl.Inc()
		defer m.httpInfl.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := httpStatus(ww.Status())
		m.httpReqCnt.WithLabelValues(r.Method, route, status).Inc()
		m.httpDur.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func httpStatus(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code)
}
