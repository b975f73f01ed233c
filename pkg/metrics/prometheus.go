package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finchat"

// Recorder implements the HTTP, publish and chat observers on one Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpBytes    *prometheus.HistogramVec
	httpInFlight *prometheus.GaugeVec

	published      *prometheus.CounterVec
	publishErrors  *prometheus.CounterVec
	publishLatency *prometheus.HistogramVec

	dispatches      *prometheus.CounterVec
	classifications *prometheus.CounterVec
	classifyLatency prometheus.Histogram
	handlerRuns     *prometheus.CounterVec
	handlerLatency  *prometheus.HistogramVec
	upstreamLatency *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
}

// New creates a recorder on a fresh registry. withRuntime adds the Go and process collectors.
func New(withRuntime bool) *Recorder {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency", Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route", "method"}),
		httpBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "response_size_bytes",
			Help: "HTTP response size", Buckets: prometheus.ExponentialBuckets(128, 4, 8),
		}, []string{"route", "method"}),
		httpInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Requests currently being served",
		}, []string{"route", "method"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "kafka", Name: "messages_published_total",
			Help: "Messages written to Kafka",
		}, []string{"topic"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "kafka", Name: "publish_errors_total",
			Help: "Failed Kafka writes",
		}, []string{"topic"}),
		publishLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "kafka", Name: "publish_duration_seconds",
			Help: "Kafka write latency", Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "chat", Name: "dispatch_total",
			Help: "Routed user messages by tier and intent",
		}, []string{"tier", "intent"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "classifier", Name: "requests_total",
			Help: "Intent classification calls by outcome",
		}, []string{"outcome"}),
		classifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "classifier", Name: "duration_seconds",
			Help: "Intent classification latency", Buckets: prometheus.DefBuckets,
		}),
		handlerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "handler", Name: "runs_total",
			Help: "Specialist handler runs by module and outcome",
		}, []string{"module", "outcome"}),
		handlerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "handler", Name: "duration_seconds",
			Help: "Specialist handler latency", Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"module"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "latency_seconds",
			Help: "Latency of collaborator calls", Buckets: prometheus.DefBuckets,
		}, []string{"service", "endpoint"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "errors_total",
			Help: "Errors by collaborator endpoint",
		}, []string{"service", "endpoint"}),
	}

	reg.MustRegister(
		r.httpRequests, r.httpLatency, r.httpBytes, r.httpInFlight,
		r.published, r.publishErrors, r.publishLatency,
		r.dispatches, r.classifications, r.classifyLatency,
		r.handlerRuns, r.handlerLatency,
		r.upstreamLatency, r.upstreamErrors,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObserveHTTP(route, method string, status int, elapsed time.Duration, bytes int64) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
	if bytes > 0 {
		r.httpBytes.WithLabelValues(route, method).Observe(float64(bytes))
	}
}

func (r *Recorder) HTTPInFlight(route, method string, delta float64) {
	r.httpInFlight.WithLabelValues(route, method).Add(delta)
}

func (r *Recorder) ObservePublish(topic string, messages int, _ int64, elapsed time.Duration, err error) {
	r.publishLatency.WithLabelValues(topic).Observe(elapsed.Seconds())
	if err != nil {
		r.publishErrors.WithLabelValues(topic).Inc()
		return
	}
	r.published.WithLabelValues(topic).Add(float64(messages))
}

// ObserveDispatch counts one routed message. tier is classified, fallback_screening, fallback_keyword or help.
func (r *Recorder) ObserveDispatch(tier, intent string) {
	r.dispatches.WithLabelValues(tier, intent).Inc()
}

// ObserveClassifier records one classifier call; outcome is ok, unavailable, error or degraded.
func (r *Recorder) ObserveClassifier(outcome string, elapsed time.Duration) {
	r.classifications.WithLabelValues(outcome).Inc()
	r.classifyLatency.Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveHandler(module string, failed bool, elapsed time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	r.handlerRuns.WithLabelValues(module, outcome).Inc()
	r.handlerLatency.WithLabelValues(module).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveUpstream(service, endpoint string, elapsed time.Duration, err error) {
	r.upstreamLatency.WithLabelValues(service, endpoint).Observe(elapsed.Seconds())
	if err != nil {
		r.upstreamErrors.WithLabelValues(service, endpoint).Inc()
	}
}
