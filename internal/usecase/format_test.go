package usecase

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"FinChat/internal/domain/models"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.234e9, "$1.2B"},
		{-2.5e9, "-$2.5B"},
		{45.6e6, "$46M"},
		{12_345, "$12K"},
		{999, "$999"},
		{0, "$0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in), "%v", tt.in)
	}
}

func TestFormatMetricAndRatio(t *testing.T) {
	assert.Equal(t, "N/A", FormatMetric(models.Number{}, "Revenue"))
	assert.Equal(t, "42.3%", FormatMetric(models.Num(42.34), "Gross Margin %"))
	assert.Equal(t, "$3.0B", FormatMetric(models.Num(3e9), "Revenue"))

	assert.Equal(t, "2.50", Ratio(models.Num(5), models.Num(2)))
	assert.Equal(t, "N/A", Ratio(models.Num(5), models.Num(0)))
	assert.Equal(t, "N/A", Ratio(models.Number{}, models.Num(2)))
}

func TestUpsidePercent(t *testing.T) {
	v, ok := UpsidePercent(models.Num(100), models.Num(125))
	assert.True(t, ok)
	assert.InDelta(t, 25.0, v, 1e-9)

	v, ok = UpsidePercent(models.Num(100), models.Num(100.0000000001))
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = UpsidePercent(models.Num(0), models.Num(10))
	assert.False(t, ok)
	_, ok = UpsidePercent(models.Num(10), models.Num(math.Inf(1)))
	assert.False(t, ok)

	assert.Equal(t, -3.0, PreferredUpside(models.Number{}, models.Num(10), models.Num(-3)))
	assert.Equal(t, "0.0%", signedPercent(-1e-9))
	assert.Equal(t, "+5.0%", signedPercent(5))
	assert.Equal(t, "upside", upsideWord(-1e-9))
	assert.Equal(t, "downside", upsideWord(-2))
}

func TestCleanNewsContent(t *testing.T) {
	in := "Line one\n\n\nLine two\nSource: https://www.reuters.com/x\n📚 Sources:\n1. a\n2. b"
	got := CleanNewsContent(in)
	assert.Equal(t, `Line one<br>Line two<br><a href="https://www.reuters.com/x" target="_blank" rel="noopener">📰 Read on reuters.com →</a>`, got)
}

func TestErrorHTML(t *testing.T) {
	assert.Equal(t, "<strong>❌ Error</strong><br>Failed. boom<br><br><em>Tip: retry</em>",
		errorHTML("Failed.", errors.New("boom"), "retry"))
	assert.Equal(t, "<strong>❌ Error</strong><br>boom", errorHTML("", errors.New("boom"), ""))
}

func TestTable(t *testing.T) {
	tb := newTable("A", "B")
	tb.row("1", "2")
	html := tb.String()
	assert.Contains(t, html, "<th")
	assert.Contains(t, html, ">1<")
	assert.Contains(t, html, ">2<")
}
