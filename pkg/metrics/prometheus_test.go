package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsDispatchAndHandlers(t *testing.T) {
	r := New(false)

	r.ObserveDispatch("classified", "NEWS")
	r.ObserveDispatch("classified", "NEWS")
	r.ObserveDispatch("help", "NEWS_DEFAULT")
	r.ObserveHandler("valuation", true, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.dispatches.WithLabelValues("classified", "NEWS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatches.WithLabelValues("help", "NEWS_DEFAULT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.handlerRuns.WithLabelValues("valuation", "error")))
}

func TestRecorderPublishAndUpstreamErrors(t *testing.T) {
	r := New(false)

	r.ObservePublish("chat.query-logs", 3, 120, time.Millisecond, nil)
	r.ObservePublish("chat.query-logs", 1, 40, time.Millisecond, errors.New("broker down"))
	r.ObserveUpstream("keymetrics", "get-metrics", time.Second, errors.New("502"))

	assert.Equal(t, 3.0, testutil.ToFloat64(r.published.WithLabelValues("chat.query-logs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.publishErrors.WithLabelValues("chat.query-logs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamErrors.WithLabelValues("keymetrics", "get-metrics")))
}

func TestRecorderGathers(t *testing.T) {
	r := New(true)
	r.ObserveHTTP("/api/chat", "POST", 200, 50*time.Millisecond, 512)
	r.HTTPInFlight("/api/chat", "POST", 1)

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["finchat_http_requests_total"])
	assert.True(t, names["finchat_http_in_flight_requests"])
	assert.True(t, names["go_goroutines"])
}
