package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/util"
)

const defaultIndustry = "Technology"

type forceLabel struct {
	en, zh, icon string
}

var forceLabels = map[string]forceLabel{
	"competitive_rivalry":    {"Competitive Rivalry", "竞争对手的竞争", "🔄"},
	"threat_of_new_entrants": {"Threat of New Entrants", "新进入者的威胁", "🚪"},
	"threat_of_substitutes":  {"Threat of Substitutes", "替代品的威胁", "🔀"},
	"supplier_power":         {"Supplier Power", "供应商议价能力", "💼"},
	"buyer_power":            {"Buyer Power", "买家议价能力", "🛒"},
}

// Competitive runs a Porter's Five Forces analysis for one company.
func (h *Handlers) Competitive(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker, company, industry string) error {
	name := util.FirstNonEmpty(company, ticker)
	industry = util.FirstNonEmpty(industry, defaultIndustry)
	return h.run(ctx, em, models.ModuleCompetitive,
		fmt.Sprintf("<strong>🏭 Competitive Analysis</strong><br>Analyzing <strong>%s</strong>'s market position using Porter's Five Forces...<br><br>"+
			"<strong>🤖 AI Selected Industry:</strong> %s<br>"+
			"<em>💡 Tip: You can specify a different industry, e.g. \"Tesla competitive analysis in autonomous driving\"</em><br><br>"+
			"<em>⏱️ This may take 15-30 seconds</em>", esc(name), esc(industry)),
		failure{
			prefix: "Failed to analyze competitive position.",
			tip:    `Try "Tesla competitive analysis" or "How does NVDA compare to its competitors?"`,
		},
		func() (models.ModuleResult, error) {
			report, err := h.analyst.Competitive(ctx, name, industry, q.Text)
			if err != nil {
				return models.ModuleResult{}, err
			}
			view := report.En
			if q.Chinese() {
				view = report.Zh
			}
			if len(view.Forces) == 0 {
				return models.ModuleResult{}, errors.New("invalid response format")
			}
			return models.NewResult(models.ModuleCompetitive, renderForces(report, view, q.Chinese()), models.ModuleAnalysis), nil
		})
}

func renderForces(r models.CompetitiveReport, view models.ForcesView, zh bool) string {
	title, overall := "Competitive Analysis", "Overall Assessment"
	if zh {
		title, overall = "行业竞争力分析", "总体评估"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>🏭 %s - %s</strong><br><em>%s</em><br><br>", esc(r.Company), title, esc(r.Industry))
	fmt.Fprintf(&b, "<strong>%s</strong><br>%s<br><br>", overall, esc(view.OverallAssessment))

	var extra []string
	for k := range view.Forces {
		if _, known := forceLabels[k]; !known {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys := append(append([]string{}, models.ForceKeys...), extra...)
	for _, k := range keys {
		f, ok := view.Forces[k]
		if !ok {
			continue
		}
		label, known := forceLabels[k]
		if !known {
			label = forceLabel{en: k, zh: k, icon: "📊"}
		}
		name := label.en
		if zh {
			name = label.zh
		}
		fmt.Fprintf(&b, "%s <strong>%s</strong> %s %g/10<br>%s<br><br>", label.icon, name, forceLevel(f.Score.Or(0)), f.Score.Or(0), esc(f.Analysis))
	}
	return b.String()
}

// forceLevel marks a 0-10 force score as high, medium or low pressure.
func forceLevel(score float64) string {
	switch {
	case score >= 7:
		return "🔴"
	case score >= 4:
		return "🟠"
	default:
		return "🟢"
	}
}

// General answers anything the other modules do not cover.
func (h *Handlers) General(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery) error {
	return h.run(ctx, em, models.ModuleGeneral,
		"<strong>🤔 Processing Your Question</strong><br>Let me help you with that...",
		failure{
			prefix: "Unable to process your question.",
			tip:    `I can help with news ("Latest news on Apple"), valuation ("Should I buy Tesla?"), performance ("How is Microsoft doing?") or screening ("Best stocks in Technology?")`,
		},
		func() (models.ModuleResult, error) {
			ans, err := h.analyst.GeneralQA(ctx, q.Text)
			if err != nil {
				return models.ModuleResult{}, err
			}
			if strings.TrimSpace(ans.Answer) == "" {
				return models.ModuleResult{}, errEmptyPayload
			}
			content := ans.Answer
			if len(ans.Citations) > 0 {
				links := make([]string, 0, len(ans.Citations))
				for _, c := range ans.Citations {
					links = append(links, fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, c, esc(Hostname(c))))
				}
				content += "<br><em>📚 Sources: " + strings.Join(links, " · ") + "</em>"
			}
			return models.NewResult(models.ModuleGeneral, content), nil
		})
}
