package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/service/slots"
	"FinChat/internal/services/upstream"
	"FinChat/pkg/logger"
	"FinChat/pkg/util"
)

// Used when neither the question nor the transcript service names a period.
const (
	fallbackQuarter = 3
	fallbackYear    = 2025
	defaultTicker   = "AAPL"
	maxQAItems      = 10
)

var (
	ErrEarningsNotFound = errors.New("earnings document not found")

	generatingRe = regexp.MustCompile(`started generating|check again|请稍后`)
	redFlagRe    = regexp.MustCompile(`(?i)red flag|风险提示`)
	analystRe    = regexp.MustCompile(`analyst|research|bank|capital|securities`)
	managementRe = regexp.MustCompile(`ceo|cfo|coo|cto|chief|president|vp|ir|operator|management|executive`)
)

type EarningsRequest struct {
	Ticker  string               `json:"ticker"`
	Year    int                  `json:"year"`
	Quarter int                  `json:"quarter"`
	Topic   models.EarningsTopic `json:"topic"`
	Lang    string               `json:"lang"`
}

// EarningsDoc is one fetched document. Generating is set instead of a payload while the
// document service is still producing it.
type EarningsDoc struct {
	EarningsRequest
	Generating string             `json:"generating,omitempty"`
	Summary    *models.SummaryDoc `json:"summary,omitempty"`
	QA         *models.QADoc      `json:"qa,omitempty"`
	Transcript *models.Transcript `json:"transcript,omitempty"`
}

// EarningsUseCase reads earnings summaries, analyst Q&A and call transcripts.
type EarningsUseCase struct {
	docs domsvc.EarningsDocs
	log  *logger.Logger
}

func NewEarningsUseCase(docs domsvc.EarningsDocs, log *logger.Logger) *EarningsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &EarningsUseCase{docs: docs, log: log}
}

// ResolvePeriod keeps a fully specified quarter and year; otherwise it asks for the latest transcript
// and falls back to Q3 2025.
func (uc *EarningsUseCase) ResolvePeriod(ctx context.Context, ticker string, quarter, year int) (int, int) {
	if quarter > 0 && year > 0 {
		return quarter, year
	}
	latest, err := uc.docs.LatestTranscript(ctx, ticker)
	if err != nil {
		uc.log.Debug("latest transcript lookup failed", logger.String("ticker", ticker), logger.Error(err))
		return fallbackQuarter, fallbackYear
	}
	if !latest.Success || !latest.Quarter.Valid || !latest.Year.Valid {
		return fallbackQuarter, fallbackYear
	}
	return int(latest.Quarter.Value), int(latest.Year.Value)
}

func topicTitle(t models.EarningsTopic) string {
	switch t {
	case models.TopicTranscript:
		return "Transcript"
	case models.TopicQA:
		return "Q&A"
	default:
		return "Summary"
	}
}

// Fetch loads the document for req. A missing document wraps ErrEarningsNotFound.
func (uc *EarningsUseCase) Fetch(ctx context.Context, req EarningsRequest) (*EarningsDoc, error) {
	req.Ticker = strings.ToUpper(req.Ticker)
	doc := &EarningsDoc{EarningsRequest: req}
	notFound := func(err error) error {
		if errors.Is(err, upstream.ErrStatus) {
			return fmt.Errorf("%s not found for %s Q%d %d: %w", topicTitle(req.Topic), req.Ticker, req.Quarter, req.Year, ErrEarningsNotFound)
		}
		return err
	}

	if req.Topic == models.TopicTranscript {
		t, err := uc.docs.Transcript(ctx, req.Ticker, req.Year, req.Quarter)
		if err != nil {
			return nil, notFound(err)
		}
		if !t.Success {
			return nil, fmt.Errorf("%s: %w", util.FirstNonEmpty(t.Error, "Failed to fetch transcript"), ErrEarningsNotFound)
		}
		doc.Transcript = &t
		return doc, nil
	}

	res, err := uc.docs.AIDoc(ctx, req.Ticker, req.Year, req.Quarter, req.Topic, req.Lang)
	if err != nil {
		return nil, notFound(err)
	}
	if !res.Success {
		if generatingRe.MatchString(res.Error) {
			doc.Generating = res.Error
			return doc, nil
		}
		return nil, fmt.Errorf("%s: %w", util.FirstNonEmpty(res.Error, "Failed to fetch "+strings.ToLower(topicTitle(req.Topic))), ErrEarningsNotFound)
	}

	switch req.Topic {
	case models.TopicQA:
		var qa models.QADoc
		if err := json.Unmarshal(res.Data, &qa); err != nil {
			return nil, fmt.Errorf("decode q&a: %w", err)
		}
		doc.QA = &qa
	default:
		var s models.SummaryDoc
		if err := json.Unmarshal(res.Data, &s); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		doc.Summary = &s
	}
	return doc, nil
}

// Earnings answers summary, Q&A and transcript questions about one earnings call.
func (h *Handlers) Earnings(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker string) error {
	return h.run(ctx, em, models.ModuleEarnings,
		"<strong>🎯 Earnings Call Specialist</strong><br>Analyzing your query...",
		failure{tip: `Try "Apple earnings summary" or "TSLA Q2 2024 analyst Q&A"`},
		func() (models.ModuleResult, error) {
			req := EarningsRequestFromQuery(q, ticker)
			req.Quarter, req.Year = h.earnings.ResolvePeriod(ctx, req.Ticker, req.Quarter, req.Year)
			doc, err := h.earnings.Fetch(ctx, req)
			if err != nil {
				return models.ModuleResult{}, err
			}
			return models.NewResult(models.ModuleEarnings, RenderEarnings(doc), models.ModuleEarnings), nil
		})
}

// EarningsRequestFromQuery fills ticker, topic, period and language from the question.
// Quarter and year are kept only when both are present.
func EarningsRequestFromQuery(q models.RoutedQuery, ticker string) EarningsRequest {
	req := EarningsRequest{Ticker: strings.ToUpper(ticker), Topic: slots.DetectTopic(q.Original + " " + q.Text), Lang: "en"}
	if req.Ticker == "" {
		req.Ticker = slots.ExtractTicker(q.Text)
	}
	if req.Ticker == "" {
		req.Ticker = defaultTicker
	}
	if quarter, year := slots.ExtractQuarterYear(q.Text); quarter > 0 && year > 0 {
		req.Quarter, req.Year = quarter, year
	}
	if q.Chinese() || slots.ContainsCJK(q.Original) {
		req.Lang = "zh"
	}
	return req
}

type earningsLabels struct {
	generating, summary, conclusion, session, questions, sentiment, question, response string
}

var (
	labelsEn = earningsLabels{"Document Being Generated", "Earnings Summary", "Overall Conclusion", "Q&A Session", "questions", "Sentiment", "Question", "Response"}
	labelsZh = earningsLabels{"文档生成中", "财报摘要", "总体结论", "问答环节", "个问题", "情感", "问题", "回答"}
)

// RenderEarnings renders whichever document doc carries.
func RenderEarnings(doc *EarningsDoc) string {
	l := labelsEn
	if doc.Lang == "zh" {
		l = labelsZh
	}
	period := fmt.Sprintf("%s - %d Q%d", esc(doc.Ticker), doc.Year, doc.Quarter)

	var b strings.Builder
	switch {
	case doc.Generating != "":
		fmt.Fprintf(&b, "<strong>⏳ %s</strong><br>%s", l.generating, esc(doc.Generating))
	case doc.Transcript != nil:
		renderTranscript(&b, doc)
	case doc.QA != nil:
		if doc.QA.Conclusion != "" {
			fmt.Fprintf(&b, "<strong>%s</strong><br>%s<br><br>", l.conclusion, doc.QA.Conclusion)
		}
		fmt.Fprintf(&b, "<strong>%s</strong> %s (%d %s)<br><br>", l.session, period, len(doc.QA.Items), l.questions)
		for i, item := range doc.QA.Items {
			if i == maxQAItems {
				break
			}
			idx := item.Index
			if idx == 0 {
				idx = i + 1
			}
			fmt.Fprintf(&b, "<strong>#%d</strong> %s · %s · %s: %g<br>", idx,
				esc(util.FirstNonEmpty(item.Analyst, "Unknown Analyst")), esc(util.FirstNonEmpty(item.Firm, "Unknown Firm")),
				l.sentiment, item.Sentiment.Or(5))
			fmt.Fprintf(&b, "<strong>%s:</strong> %s<br><details><summary>%s:</summary>%s</details><br>", l.question, item.Question, l.response, item.Response)
		}
		if len(doc.QA.Items) > maxQAItems {
			fmt.Fprintf(&b, "<em>Showing %d of %d questions</em>", maxQAItems, len(doc.QA.Items))
		}
	case doc.Summary != nil:
		fmt.Fprintf(&b, "<strong>%s</strong> %s<br><br>", l.summary, period)
		for i, s := range doc.Summary.Sections {
			open := ""
			if i == 0 {
				open = " open"
			}
			heading := esc(s.Heading)
			if redFlagRe.MatchString(s.Heading) {
				heading = "🚩 " + heading
			}
			fmt.Fprintf(&b, "<details%s><summary>%s</summary>", open, heading)
			for _, bullet := range s.Bullets {
				b.WriteString("• " + bullet + "<br>")
			}
			b.WriteString("</details>")
		}
	}
	return b.String()
}

func renderTranscript(b *strings.Builder, doc *EarningsDoc) {
	t := doc.Transcript
	meta := models.TranscriptMetadata{}
	if t.Metadata != nil {
		meta = *t.Metadata
	}
	fmt.Fprintf(b, "<strong>%s (%s)</strong><br>%d Q%d Earnings Call · %s · %s<br><br>",
		esc(util.FirstNonEmpty(meta.CompanyName, doc.Ticker)), esc(doc.Ticker), doc.Year, doc.Quarter,
		util.FirstNonEmpty(meta.EarningsTimingDisplay, "During Market"), util.FirstNonEmpty(meta.CallDate, "Date TBD"))

	if len(t.Participants) > 0 {
		fmt.Fprintf(b, "<details><summary>Participants (%d)</summary><ul>", len(t.Participants))
		for _, p := range t.Participants {
			b.WriteString("<li>" + esc(util.FirstNonEmpty(p.Name, "Unknown")))
			if p.Role != "" {
				b.WriteString(" - " + esc(p.Role))
				if p.Company != "" {
					b.WriteString(", " + esc(p.Company))
				}
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul></details>")
	}

	for _, seg := range t.TranscriptSplit {
		fmt.Fprintf(b, `<div class="speaker-%s">`, speakerKind(seg.Role))
		if seg.Role != "" {
			b.WriteString("<em>" + esc(seg.Role) + "</em> ")
		}
		fmt.Fprintf(b, "<strong>%s</strong><br>%s</div>", esc(util.FirstNonEmpty(seg.Speaker, util.FirstNonEmpty(seg.Company, "Unknown"))), esc(seg.Text))
	}

	if t.Transcript != "" {
		b.WriteString("<details><summary>Full Transcript</summary><pre>" + esc(t.Transcript) + "</pre></details>")
	}
}

// speakerKind groups transcript speakers by role for styling.
func speakerKind(role string) string {
	role = strings.ToLower(role)
	switch {
	case analystRe.MatchString(role):
		return "analyst"
	case managementRe.MatchString(role):
		return "management"
	default:
		return "other"
	}
}
