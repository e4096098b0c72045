package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics records API traffic, render passes and reconciler outcomes of
// the terminal client.
type ClientMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestFailures *prometheus.CounterVec
	renderPasses    prometheus.Counter
	mountedNodes    prometheus.Gauge
	commands        *prometheus.CounterVec
}

// NewClientMetrics registers the client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spesa_api_request_duration_seconds",
		Help:    "Duration of REST calls made by the client.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	requestFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spesa_api_request_failures_total",
		Help: "REST calls that ended in an error, by error code.",
	}, []string{"route", "code"})
	renderPasses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spesa_render_passes_total",
		Help: "Incremental list render passes.",
	})
	mountedNodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spesa_render_mounted_nodes",
		Help: "Item nodes mounted after the last render pass.",
	})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spesa_commands_total",
		Help: "Optimistic commands by name and outcome.",
	}, []string{"command", "outcome"})
	reg.MustRegister(requestDuration, requestFailures, renderPasses, mountedNodes, commands)
	return &ClientMetrics{
		requestDuration: requestDuration,
		requestFailures: requestFailures,
		renderPasses:    renderPasses,
		mountedNodes:    mountedNodes,
		commands:        commands,
	}
}

// ObserveRequest records the duration of a completed (or failed) REST call.
// A zero status means the request never produced a response.
func (c *ClientMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if c == nil || c.requestDuration == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, normalizeLabel(route), statusLabel(status)).Observe(duration.Seconds())
}

// IncRequestFailure counts a failed REST call by its error code.
func (c *ClientMetrics) IncRequestFailure(route, code string) {
	if c == nil || c.requestFailures == nil {
		return
	}
	c.requestFailures.WithLabelValues(normalizeLabel(route), normalizeLabel(code)).Inc()
}

// ObserveRender records one render pass and the resulting node count.
func (c *ClientMetrics) ObserveRender(mounted int) {
	if c == nil || c.renderPasses == nil {
		return
	}
	c.renderPasses.Inc()
	c.mountedNodes.Set(float64(mounted))
}

// IncCommand counts a reconciler command outcome.
func (c *ClientMetrics) IncCommand(command, outcome string) {
	if c == nil || c.commands == nil {
		return
	}
	c.commands.WithLabelValues(normalizeLabel(command), normalizeLabel(outcome)).Inc()
}

// Handler exposes the registry for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func statusLabel(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
