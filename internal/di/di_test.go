package di

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/pkg/config"
)

func TestInitializeAppInMockMode(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	cfg.Mock = true
	cfg.Metrics.Enabled = true
	cfg.Logging.Level = "error"
	require.NoError(t, cfg.Validate())

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	h := app.Handler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/classify-intent", strings.NewReader(`{"query":"tesla news"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"TSLA"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "finchat_http_requests_total")
}

func TestProvideQueryLogPublisherWithoutBrokers(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Nil(t, ProvideQueryLogPublisher(cfg, nil))

	producer, cleanup, err := ProvideKafkaProducer(cfg, ProvideMetrics(cfg))
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, producer)
}
