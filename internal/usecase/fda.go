package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/services/upstream"
	"FinChat/pkg/util"
)

const fdaListLimit = 10

const fdaNoData = "<strong>⚠️ No FDA data found</strong><br>Try searching with a different company name or ticker."

// FDA looks up the drug pipeline for a ticker or company name, or lists tracked companies.
func (h *Handlers) FDA(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, identifier, identifierType string) error {
	return h.run(ctx, em, models.ModuleFDA,
		"<strong>🎯 FDA Analysis</strong><br>Searching FDA database for pharmaceutical information...<br><br><em>⏱️ Analyzing drug recalls, approvals, and regulatory data...</em>",
		failure{
			prefix: "Failed to fetch FDA information.",
			tip:    `Try asking about specific pharma companies like "Pfizer drug approvals" or "JNJ recalls"`,
		},
		func() (models.ModuleResult, error) {
			resp, listed, err := h.lookupFDA(ctx, strings.TrimSpace(identifier), identifierType)
			if errors.Is(err, upstream.ErrStatus) {
				return models.NewResult(models.ModuleFDA, fdaNoData, models.ModuleFDA), nil
			}
			if err != nil {
				return models.ModuleResult{}, err
			}
			if !resp.Success || len(resp.Companies) == 0 {
				return models.NewResult(models.ModuleFDA, fdaNoData, models.ModuleFDA), nil
			}
			if listed {
				return models.NewResult(models.ModuleFDA, renderFDAList(resp.Companies), models.ModuleFDA), nil
			}
			return models.NewResult(models.ModuleFDA, renderFDACompany(resp.Companies[0]), models.ModuleFDA), nil
		})
}

// lookupFDA reports listed=true when it fell back to the company overview.
func (h *Handlers) lookupFDA(ctx context.Context, identifier, identifierType string) (models.FDAResponse, bool, error) {
	switch {
	case identifier != "" && identifierType == models.IdentifierTicker:
		resp, err := h.fda.Company(ctx, strings.ToUpper(identifier))
		return resp, false, err
	case identifier != "" && identifierType == models.IdentifierCompany:
		found, err := h.fda.SearchCompanies(ctx, identifier)
		if err != nil {
			return models.FDAResponse{}, false, err
		}
		if len(found.Companies) == 0 || found.Companies[0].Ticker == "" {
			return models.FDAResponse{}, false, nil
		}
		resp, err := h.fda.Company(ctx, found.Companies[0].Ticker)
		return resp, false, err
	case identifier != "":
		return models.FDAResponse{}, false, nil
	default:
		resp, err := h.fda.ListCompanies(ctx)
		return resp, true, err
	}
}

func renderFDACompany(c models.FDACompany) string {
	var b strings.Builder
	b.WriteString("<strong>💊 FDA Drug Pipeline Events</strong><br><br>")
	if len(c.Drugs) == 0 {
		fmt.Fprintf(&b, "<strong>ℹ️ No drug pipeline data available for %s</strong><br>This company may not have active FDA submissions.", esc(c.Company))
		return b.String()
	}
	t := newTable("Ticker", "Company", "Drug", "Indication", "Date", "Event", "Status", "Event Details")
	for _, d := range c.Drugs {
		details := "No details available"
		if link := FirstURL(d.EventDetails); link != "" {
			details = fmt.Sprintf(`<a href="%s" target="_blank">View Details</a>`, link)
		}
		t.row(
			c.Ticker,
			esc(c.Company),
			esc(d.Drug),
			esc(util.FirstNonEmpty(d.Indication, "N/A")),
			util.FirstNonEmpty(d.Date, util.FirstNonEmpty(c.LatestUpdate, "N/A")),
			esc(util.FirstNonEmpty(d.Event, "FDA Action")),
			util.FirstNonEmpty(d.Status, "Pending"),
			details,
		)
	}
	b.WriteString(t.String())
	fmt.Fprintf(&b, "<br>Showing 1 to %d of %d results", len(c.Drugs), len(c.Drugs))
	return b.String()
}

func renderFDAList(companies []models.FDACompany) string {
	total := len(companies)
	if len(companies) > fdaListLimit {
		companies = companies[:fdaListLimit]
	}
	var b strings.Builder
	b.WriteString("<strong>💊 FDA Drug Pipeline Overview</strong><br><br>")
	fmt.Fprintf(&b, "<strong>FDA Drug Pipeline Events</strong> <em>Showing %d of %d results</em><br>", len(companies), total)
	t := newTable("Ticker", "Company", "Drug", "Indication", "Date", "Event", "Status")
	for _, c := range companies {
		var first models.FDADrug
		if len(c.Drugs) > 0 {
			first = c.Drugs[0]
		}
		t.row(
			c.Ticker,
			esc(c.Company),
			esc(util.FirstNonEmpty(first.Drug, "N/A")),
			esc(util.FirstNonEmpty(first.Indication, "N/A")),
			util.FirstNonEmpty(c.Date, util.FirstNonEmpty(c.LatestUpdate, "N/A")),
			esc(util.FirstNonEmpty(first.Event, "FDA decision")),
			util.FirstNonEmpty(first.Status, "Pending"),
		)
	}
	b.WriteString(t.String())
	b.WriteString(`<br><em>💡 <strong>Tip:</strong> Ask about a specific company for detailed FDA information.<br>Example: "Johnson &amp; Johnson drug recalls" or "PFE FDA approvals"</em>`)
	return b.String()
}

