package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
)

func TestDemoStepRendering(t *testing.T) {
	stocks := SampleStocks("technology")

	_, res := StepValuation.Run(stocks)
	assert.Contains(t, res.Content, "• <strong>AAPL</strong>: Current $175.23 → Fair Value $190.5 (8.7% upside)")

	_, res = StepData.Run(stocks)
	assert.Contains(t, res.Content, "<strong>AAPL</strong>: P/E 28.5, Strong fundamentals")

	processing, res := StepDisclaimer.Run(stocks)
	assert.True(t, processing.Placeholder)
	assert.Equal(t, disclaimerHTML, processing.Content)
	assert.Contains(t, res.Content, "Stocks Selected for Analysis")
	assert.Equal(t, models.ModuleDemo, res.Module)
}

func TestSampleStocksFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "JNJ", SampleStocks(" Healthcare ")[0].Symbol)
	assert.Equal(t, sampleStocks[demoDefaultSet], SampleStocks("Drone"))
	assert.Equal(t, "unknown", DemoStep(42).String())
	assert.Equal(t, "done", StepDone.String())
}

func TestDemoRunPlaysEveryStep(t *testing.T) {
	d := NewDemo(0, nil)
	var col Collector

	step, err := d.Run(context.Background(), &col, "Energy")
	require.NoError(t, err)
	assert.Equal(t, StepDone, step)

	rs := col.Results()
	require.Len(t, rs, 16)
	for i, r := range rs {
		assert.Equal(t, i%2 == 0, r.Placeholder, "result %d", i)
	}
	assert.Contains(t, rs[15].Content, "<strong>XOM</strong>: UNDERVALUED")
}

func TestDemoRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDemo(time.Hour, nil)
	d.wait = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	var col Collector
	step, err := d.Run(ctx, &col, "Technology")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepDisclaimer, step)
	assert.Len(t, col.Results(), 1)
}
