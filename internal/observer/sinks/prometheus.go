package sinks

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/crawl-status-check/internal/observer"
	"github.com/JakeFAU/crawl-status-check/internal/status"
)

// PrometheusObserver exports crawl outcome counters via Prometheus.
type PrometheusObserver struct {
	requests prometheus.Counter
	outcomes *prometheus.CounterVec
	finished prometheus.Counter
}

var _ observer.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the collectors against the provided registry.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusObserver{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statuscheck_requests_total",
			Help: "Requests the crawler announced before fetching.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statuscheck_outcomes_total",
			Help: "Crawl outcomes partitioned by category and status key.",
		}, []string{"category", "status"}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statuscheck_crawls_finished_total",
			Help: "Crawls that reached the finished callback.",
		}),
	}
	for _, collector := range []prometheus.Collector{s.requests, s.outcomes, s.finished} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register statuscheck collector: %w", err)
		}
	}
	return s, nil
}

// WillCrawl counts an announced request.
func (s *PrometheusObserver) WillCrawl(string) {
	s.requests.Inc()
}

// HasBeenCrawled counts the outcome. It is safe for concurrent use.
func (s *PrometheusObserver) HasBeenCrawled(_ string, resp *observer.Response, _ string) {
	code := "unresponsive"
	category := status.Error
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
		category = status.Classify(code)
	}
	s.outcomes.WithLabelValues(string(category), code).Inc()
}

// FinishedCrawling counts a completed crawl.
func (s *PrometheusObserver) FinishedCrawling() error {
	s.finished.Inc()
	return nil
}
