package keywords

import (
	"errors"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Matcher finds any of a fixed set of lower-case phrases inside text, substring semantics.
type Matcher struct {
	machine *goahocorasick.Machine
	words   []string
}

func NewMatcher(words []string) (*Matcher, error) {
	words = lo.Uniq(lo.FilterMap(words, func(w string, _ int) (string, bool) {
		w = strings.ToLower(strings.TrimSpace(w))
		return w, w != ""
	}))
	if len(words) == 0 {
		return nil, errors.New("keywords: empty word list")
	}
	sort.Strings(words)

	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = []rune(w)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Matcher{machine: m, words: words}, nil
}

// Find returns the distinct phrases present in text, in order of first occurrence.
func (m *Matcher) Find(text string) []string {
	content := []rune(strings.ToLower(text))
	if len(content) == 0 {
		return nil
	}
	spans := m.machine.MultiPatternSearch(content, false)
	return lo.Uniq(lo.Map(spans, func(t *goahocorasick.Term, _ int) string {
		return string(t.Word)
	}))
}

// Matches reports whether any phrase occurs in text.
func (m *Matcher) Matches(text string) bool {
	content := []rune(strings.ToLower(text))
	if len(content) == 0 {
		return false
	}
	return len(m.machine.MultiPatternSearch(content, true)) > 0
}

// Words returns the normalized phrase list.
func (m *Matcher) Words() []string {
	return append([]string(nil), m.words...)
}
