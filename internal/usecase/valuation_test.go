package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FinChat/internal/domain/models"
)

func TestNearZeroUpsideDisplay(t *testing.T) {
	v, ok := UpsidePercent(models.Num(100), models.Num(100.00001))
	assert.True(t, ok)
	assert.Equal(t, "0.0%", signedPercent(v))
	assert.Equal(t, "upside", upsideWord(v))

	assert.Equal(t, "0.0%", signedPercent(0.04))
	assert.Equal(t, "0.0%", signedPercent(-0.04))
	assert.Equal(t, "upside", upsideWord(-0.04))
	assert.Equal(t, "+0.3%", signedPercent(0.26))
	assert.Equal(t, "-0.3%", signedPercent(-0.26))
	assert.Equal(t, "downside", upsideWord(-0.26))

	assert.Contains(t, ScreeningValuationLine(models.Num(100), models.Num(100.00001), models.Number{}), "(0.0% upside)")
	assert.Contains(t, ScreeningValuationLine(models.Num(100), models.Num(99.99), models.Number{}), "(0.0% upside)")
}

func TestRenderValuation(t *testing.T) {
	a := models.ValuationAnalysis{
		Success: true,
		Ticker:  "TSLA",
		Data: &models.ValuationEngineResult{
			CurrentPrice: models.Num(100),
			TargetPrice:  models.Num(100.00001),
			Confidence:   models.Num(0.85),
			Method:       "DCF",
		},
	}
	out := RenderValuation(a)
	assert.Contains(t, out, "Valuation Summary for TSLA")
	assert.Contains(t, out, "Target Price: <strong>$100.00</strong> (0.0% upside)")
	assert.NotContains(t, out, "+0.0%")
	assert.Contains(t, out, "<td>📊 DCF Model</td><td>N/A</td><td>N/A</td>")
	assert.Contains(t, out, "<td>📈 Relative Model</td><td>N/A</td><td>N/A</td>")
	assert.Contains(t, out, "Confidence: <strong>85%</strong> (High)")
	assert.Contains(t, out, "Status: <strong>Fairly Valued</strong>")

	a.Ticker = "<b>X</b>"
	a.Data.Details = &models.ValuationDetails{
		DCF:      &models.DCFValuation{IntrinsicValue: models.Num(125)},
		Relative: &models.RelativeValuation{MedianEstimate: models.Num(90)},
	}
	out = RenderValuation(a)
	assert.Contains(t, out, "Valuation Summary for &lt;b&gt;X&lt;/b&gt;")
	assert.Contains(t, out, "<td>📊 DCF Model</td><td>$125.00</td><td>+25.0%</td>")
	assert.Contains(t, out, "<td>📈 Relative Model</td><td>$90.00</td><td>-10.0%</td>")
}
