package sinks

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/crawl-status-check/internal/observer"
)

// TestPrometheusObserverRecordsMetrics ensures counters follow the event stream.
func TestPrometheusObserverRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusObserver(reg)
	require.NoError(t, err)

	sink.WillCrawl("http://a.example")
	sink.WillCrawl("http://b.example")
	sink.HasBeenCrawled("http://a.example", &observer.Response{StatusCode: 200}, "")
	sink.HasBeenCrawled("http://b.example", &observer.Response{StatusCode: 404}, "http://a.example")
	sink.HasBeenCrawled("http://c.example", &observer.Response{StatusCode: 404}, "http://a.example")
	sink.HasBeenCrawled("http://d.example", nil, "http://a.example")
	require.NoError(t, sink.FinishedCrawling())

	require.InDelta(t, 2.0, testutil.ToFloat64(sink.requests), 1e-9)
	require.InDelta(t, 1.0, testutil.ToFloat64(sink.outcomes.WithLabelValues("ok", "200")), 1e-9)
	require.InDelta(t, 2.0, testutil.ToFloat64(sink.outcomes.WithLabelValues("error", "404")), 1e-9)
	require.InDelta(t, 1.0, testutil.ToFloat64(sink.outcomes.WithLabelValues("error", "unresponsive")), 1e-9)
	require.InDelta(t, 1.0, testutil.ToFloat64(sink.finished), 1e-9)
	require.Equal(t, 3, testutil.CollectAndCount(sink.outcomes, "statuscheck_outcomes_total"))
}

// TestPrometheusObserverDuplicateRegistration surfaces registry conflicts.
func TestPrometheusObserverDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusObserver(reg)
	require.NoError(t, err)
	_, err = NewPrometheusObserver(reg)
	require.Error(t, err)
}
