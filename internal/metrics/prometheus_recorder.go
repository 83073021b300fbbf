package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitepublish"

// PrometheusRecorder implements Recorder with client_golang collectors.
type PrometheusRecorder struct {
	publishDuration prom.Histogram
	pageResults     *prom.CounterVec
	publishOutcomes *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg. A nil reg gets
// a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		publishDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Total duration of a publish run",
			Buckets:   prom.DefBuckets,
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_results_total",
			Help:      "Page task results by locale",
		}, []string{"locale", "result"}),
		publishOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_outcomes_total",
			Help:      "Publish runs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.publishDuration, pr.pageResults, pr.publishOutcomes)
	return pr
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(locale string, result PageResult) {
	if p == nil {
		return
	}
	if locale == "" {
		locale = "default"
	}
	p.pageResults.WithLabelValues(locale, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome PublishOutcome) {
	if p == nil {
		return
	}
	p.publishOutcomes.WithLabelValues(string(outcome)).Inc()
}

// HTTPHandler serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
