// Package slots pulls tickers, periods, companies and industries out of free text.
// Every function is total: a miss returns the zero value.
package slots

import (
	"regexp"
	"strconv"
	"strings"

	"FinChat/internal/domain/models"
)

var (
	tickerRe     = regexp.MustCompile(`\$?\b([A-Z]{2,5})\b`)
	quarterRe    = regexp.MustCompile(`(?i)(?:^|[^a-z])q([1-4])(?:[^0-9]|$)`)
	cjkQuarterRe = regexp.MustCompile(`第\s*([1-4一二三四])\s*季度`)
	yearRe       = regexp.MustCompile(`\b(20\d{2})\b`)
	cjkRe        = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]`)

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:how is|how's|about)\s+([a-zA-Z\s]+?)(?:'s|\s+performance|\s+doing|$)`),
		regexp.MustCompile(`(?i)(?:show|get|fetch)\s+(?:me\s+)?([a-zA-Z\s]+?)\s+(?:performance|metrics|data)`),
		regexp.MustCompile(`(?i)^([a-zA-Z\s]+?)\s+(?:performance|metrics|doing|data)`),
	}

	industryRe = regexp.MustCompile(`(?i)\b(?:invest in|in)\s+(\w+)`)

	transcriptRe = regexp.MustCompile(`(?i)\btranscript\b|\bfull\b|完整|电话会议记录`)
	qaRe         = regexp.MustCompile(`(?i)q&a|\bqa\b|问答|分析师`)
)

// Uppercase tokens that look like tickers but never are.
var tickerStopwords = map[string]bool{
	"AI": true, "CEO": true, "CFO": true, "COO": true, "CTO": true, "EPS": true, "ETF": true,
	"EV": true, "FDA": true, "GAAP": true, "IPO": true, "PE": true, "QA": true, "SEC": true,
	"TTM": true, "US": true, "USA": true, "USD": true, "YOY": true, "QOQ": true, "API": true,
	"DCF": true, "IR": true, "OK": true, "FAQ": true, "ESG": true, "ROE": true, "ROI": true,
}

var cjkDigits = map[string]int{"一": 1, "二": 2, "三": 3, "四": 4}

var industryAliases = map[string]string{
	"tech":       "Technology",
	"technology": "Technology",
	"healthcare": "Healthcare",
	"finance":    "Finance",
	"ev":         "EV",
	"ai":         "AI",
}

// ExtractTicker returns the first 2-5 letter uppercase token that is not a common acronym.
func ExtractTicker(text string) string {
	for _, m := range tickerRe.FindAllStringSubmatch(text, -1) {
		if !tickerStopwords[m[1]] {
			return m[1]
		}
	}
	return ""
}

// ExtractQuarterYear finds "Q3" (or 第三季度) and a 20xx year. Zero means absent.
func ExtractQuarterYear(text string) (quarter, year int) {
	if m := quarterRe.FindStringSubmatch(text); m != nil {
		quarter, _ = strconv.Atoi(m[1])
	} else if m := cjkQuarterRe.FindStringSubmatch(text); m != nil {
		if q, ok := cjkDigits[m[1]]; ok {
			quarter = q
		} else {
			quarter, _ = strconv.Atoi(m[1])
		}
	}
	if m := yearRe.FindStringSubmatch(text); m != nil {
		year, _ = strconv.Atoi(m[1])
	}
	return quarter, year
}

// ExtractCompanyPhrase tries the ordered performance phrasings, then falls back to the first word.
func ExtractCompanyPhrase(text string) string {
	text = strings.TrimSpace(text)
	for _, re := range companyPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				return s
			}
		}
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// ExtractIndustry reads the word after "in"/"invest in" and normalizes known aliases.
func ExtractIndustry(text string) string {
	m := industryRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return NormalizeIndustry(m[1])
}

// NormalizeIndustry maps common synonyms (tech -> Technology, ev -> EV); other names pass through.
func NormalizeIndustry(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := industryAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// DetectTopic picks transcript, qa or summary from the wording of an earnings question.
func DetectTopic(text string) models.EarningsTopic {
	switch {
	case transcriptRe.MatchString(text):
		return models.TopicTranscript
	case qaRe.MatchString(text):
		return models.TopicQA
	default:
		return models.TopicSummary
	}
}

// ContainsCJK reports whether text has a CJK unified ideograph.
func ContainsCJK(text string) bool {
	return cjkRe.MatchString(text)
}
