package usecase

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"

	"FinChat/internal/domain/models"
)

// nearZero treats tiny magnitudes as exactly zero so no "-0.0%" is shown.
const nearZero = 1e-6

var (
	sourcesBlockRe = regexp.MustCompile(`📚 Sources:[\s\S]*$`)
	blankLinesRe   = regexp.MustCompile(`\n{2,}`)
	sourceLinkRe   = regexp.MustCompile(`(?:🔗\s*)?(?:\[)?Source(?:\])?:?\s*(https?://[^\s<]+)`)
	urlRe          = regexp.MustCompile(`https?://[^\s]+`)
)

// FormatMoney renders B with one decimal, M and K with none.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("%s$%.1fB", sign, a/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%s$%.0fM", sign, a/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%s$%.0fK", sign, a/1e3)
	default:
		return fmt.Sprintf("%s$%.0f", sign, a)
	}
}

// FormatMetric renders one key-metrics cell.
func FormatMetric(n models.Number, metric string) string {
	if !n.Valid {
		return "N/A"
	}
	if metric == "Gross Margin %" {
		return fmt.Sprintf("%.1f%%", n.Value)
	}
	return FormatMoney(n.Value)
}

// PriceOrNA renders a dollar price with two decimals, or N/A when missing.
func PriceOrNA(n models.Number) string {
	if !n.Valid {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", n.Value)
}

// Ratio is a/b with two decimals, or N/A when either side is missing or zero.
func Ratio(a, b models.Number) string {
	if !a.Valid || !b.Valid || a.Value == 0 || b.Value == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", a.Value/b.Value)
}

// ClampZero maps |v| < 1e-6 to 0.
func ClampZero(v float64) float64 {
	if math.Abs(v) < nearZero {
		return 0
	}
	return v
}

// UpsidePercent computes (target-current)/current*100 when both prices are finite and current is positive.
func UpsidePercent(current, target models.Number) (float64, bool) {
	if !current.Valid || !target.Valid || current.Value <= 0 {
		return 0, false
	}
	if math.IsInf(current.Value, 0) || math.IsInf(target.Value, 0) || math.IsNaN(current.Value) || math.IsNaN(target.Value) {
		return 0, false
	}
	return ClampZero((target.Value - current.Value) / current.Value * 100), true
}

// PreferredUpside prefers the price-derived percentage over the reported one.
func PreferredUpside(current, target, reported models.Number) float64 {
	if v, ok := UpsidePercent(current, target); ok {
		return v
	}
	return ClampZero(reported.Or(0))
}

// displayPercent is v as printed with one decimal, with -0.0 folded into 0.
func displayPercent(v float64) float64 {
	return ClampZero(math.Round(v*10) / 10)
}

func signedPercent(v float64) string {
	v = displayPercent(v)
	if v > 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

func upsideWord(v float64) string {
	if displayPercent(v) < 0 {
		return "downside"
	}
	return "upside"
}

// CleanNewsContent strips the trailing sources block, collapses blank lines and turns
// "Source: <url>" references into hostname links.
func CleanNewsContent(s string) string {
	s = sourcesBlockRe.ReplaceAllString(s, "")
	s = blankLinesRe.ReplaceAllString(strings.TrimSpace(s), "\n")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return sourceLinkRe.ReplaceAllStringFunc(s, func(m string) string {
		link := sourceLinkRe.FindStringSubmatch(m)[1]
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">📰 Read on %s →</a>`, link, Hostname(link))
	})
}

// Hostname returns the host of raw without a leading "www.", or raw when unparsable.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// FirstURL returns the first http(s) URL in s.
func FirstURL(s string) string {
	return urlRe.FindString(s)
}

func esc(s string) string { return html.EscapeString(s) }

func nl2br(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}

// errorHTML is the uniform apologetic envelope body.
func errorHTML(prefix string, err error, tip string) string {
	var b strings.Builder
	b.WriteString("<strong>❌ Error</strong><br>")
	b.WriteString(prefix)
	if err != nil {
		if prefix != "" {
			b.WriteString(" ")
		}
		b.WriteString(esc(err.Error()))
	}
	if tip != "" {
		b.WriteString("<br><br><em>Tip: ")
		b.WriteString(tip)
		b.WriteString("</em>")
	}
	return b.String()
}

type table struct {
	b strings.Builder
}

func newTable(headers ...string) *table {
	t := &table{}
	t.b.WriteString("<table><thead><tr>")
	for _, h := range headers {
		t.b.WriteString("<th>" + h + "</th>")
	}
	t.b.WriteString("</tr></thead><tbody>")
	return t
}

func (t *table) row(cells ...string) {
	t.b.WriteString("<tr>")
	for _, c := range cells {
		t.b.WriteString("<td>" + c + "</td>")
	}
	t.b.WriteString("</tr>")
}

func (t *table) String() string {
	return t.b.String() + "</tbody></table>"
}
