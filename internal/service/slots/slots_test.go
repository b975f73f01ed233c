package slots

import (
	"testing"

	"FinChat/internal/domain/models"
)

func TestExtractTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Should I buy AAPL?", "AAPL"},
		{"What did the CEO of TSLA say", "TSLA"},
		{"$NVDA guidance", "NVDA"},
		{"how is apple doing", ""},
		{"AI stocks with good EPS", ""},
	}
	for _, tc := range cases {
		if got := ExtractTicker(tc.in); got != tc.want {
			t.Fatalf("ExtractTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractQuarterYear(t *testing.T) {
	cases := []struct {
		in      string
		quarter int
		year    int
	}{
		{"AAPL Q3 2024 earnings", 3, 2024},
		{"tesla q1 call", 1, 0},
		{"特斯拉2025年第二季度财报", 2, 2025},
		{"no period here", 0, 0},
		{"Q5 2019", 0, 2019},
	}
	for _, tc := range cases {
		q, y := ExtractQuarterYear(tc.in)
		if q != tc.quarter || y != tc.year {
			t.Fatalf("ExtractQuarterYear(%q) = (%d, %d), want (%d, %d)", tc.in, q, y, tc.quarter, tc.year)
		}
	}
}

func TestExtractCompanyPhrase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"How is Tesla's performance?", "Tesla"},
		{"how's microsoft doing", "microsoft"},
		{"Rivian metrics", "Rivian"},
		{"show me Apple data", "Apple"},
		{"NVDA", "NVDA"},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := ExtractCompanyPhrase(tc.in); got != tc.want {
			t.Fatalf("ExtractCompanyPhrase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractIndustry(t *testing.T) {
	cases := map[string]string{
		"what stock should I invest in Technology": "Technology",
		"best stock in tech":                       "Technology",
		"good investment in ev":                    "EV",
		"stock pick in Semiconductors":             "Semiconductors",
		"which stock should I buy":                 "",
	}
	for in, want := range cases {
		if got := ExtractIndustry(in); got != want {
			t.Fatalf("ExtractIndustry(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectTopic(t *testing.T) {
	cases := []struct {
		in   string
		want models.EarningsTopic
	}{
		{"AAPL full transcript Q3", models.TopicTranscript},
		{"Tesla earnings Q&A", models.TopicQA},
		{"analyst qa for NVDA", models.TopicQA},
		{"Qualcomm earnings summary", models.TopicSummary},
		{"苹果电话会议记录", models.TopicTranscript},
	}
	for _, tc := range cases {
		if got := DetectTopic(tc.in); got != tc.want {
			t.Fatalf("DetectTopic(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContainsCJK(t *testing.T) {
	if !ContainsCJK("特斯拉的估值") {
		t.Fatalf("expected CJK")
	}
	if ContainsCJK("Tesla valuation") {
		t.Fatalf("unexpected CJK")
	}
}
