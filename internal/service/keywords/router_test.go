package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
)

func newRouter(t *testing.T) *Router {
	t.Helper()
	r, err := NewRouter()
	require.NoError(t, err)
	return r
}

func TestRouteEarningsBeatsNews(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, models.IntentEarnings, r.Route("Tesla earnings news roundup"))
	assert.Equal(t, models.IntentEarnings, r.Route("Any HEADLINE about the guidance?"))
}

func TestRoutePerformanceFirst(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, models.IntentPerformance, r.Route("How is Microsoft doing after earnings?"))
	assert.Equal(t, models.IntentPerformance, r.Route("AMD versus Intel"))
}

func TestRouteNewsAndDefault(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, models.IntentNews, r.Route("Apple product launch"))
	assert.Equal(t, models.IntentNewsDefault, r.Route("tell me a joke"))
	assert.Equal(t, models.IntentNewsDefault, r.Route(""))
	assert.NotEqual(t, models.IntentNews, r.Route("hello there"))
}

func TestKeywordSetsDisjoint(t *testing.T) {
	seen := map[string]string{}
	sets := map[string][]string{
		"news":        NewsKeywords,
		"earnings":    EarningsKeywords,
		"performance": PerformanceKeywords,
	}
	for name, words := range sets {
		for _, w := range words {
			if other, ok := seen[w]; ok {
				t.Fatalf("%q appears in both %s and %s", w, other, name)
			}
			seen[w] = name
		}
	}
}

func TestScreeningDetector(t *testing.T) {
	d, err := NewScreeningDetector()
	require.NoError(t, err)

	assert.True(t, d.Detect("What stock should I invest in Technology"))
	assert.True(t, d.Detect("undervalued tech stock pick"))
	assert.False(t, d.Detect("Apple earnings summary"))
}

func TestMatcherFind(t *testing.T) {
	m, err := NewMatcher([]string{"Invest In", "stock pick", "stock pick"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"invest in", "stock pick"}, m.Find("a STOCK PICK to invest in"))
	assert.Empty(t, m.Find("nothing here"))

	_, err = NewMatcher([]string{" ", ""})
	assert.Error(t, err)
}
