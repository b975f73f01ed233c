package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
)

// countingTranslator prefixes the target language and counts calls.
type countingTranslator struct {
	calls atomic.Int32
	en    string
}

func (c *countingTranslator) Translate(_ context.Context, text, target string) (string, bool) {
	c.calls.Add(1)
	if target == models.LangEnglish && c.en != "" {
		return c.en, false
	}
	return target + ":" + text, false
}

func newTestStore(t *testing.T, max int, tr domsvc.Translator) *SessionStore {
	t.Helper()
	st := NewSessionStore(time.Hour, max, tr, nil)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSessionMessagesTranslatesOnce(t *testing.T) {
	tr := &countingTranslator{}
	s := newTestStore(t, 10, tr).GetOrCreate("")
	require.NotEmpty(t, s.ID)

	s.AppendUser("hi", "")
	require.NoError(t, s.Transcript().Emit(context.Background(), models.NewResult(models.ModuleNews, "news")))
	assert.Zero(t, tr.calls.Load())

	msgs := s.Messages(context.Background(), models.LangChinese)
	require.Len(t, msgs, 2)
	assert.Equal(t, "zh-CN:hi", msgs[0].Content)
	assert.Equal(t, "zh-CN:news", msgs[1].Content)
	assert.EqualValues(t, 2, tr.calls.Load())

	s.Messages(context.Background(), models.LangChinese)
	assert.EqualValues(t, 2, tr.calls.Load())

	en := s.Messages(context.Background(), "fr")
	assert.Equal(t, "hi", en[0].Content)
}

func TestTranscriptDropsDemoStepAfterReset(t *testing.T) {
	s := newTestStore(t, 10, nil).GetOrCreate("s-reset")

	release := make(chan struct{})
	errs := make(chan error, 1)
	s.startDemo(func(ctx context.Context) {
		<-release
		errs <- s.Transcript().Emit(ctx, models.NewResult(models.ModuleDemo, "late step"))
	})

	s.Reset()
	close(release)
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("demo step never ran")
	}
	assert.Zero(t, s.Len())
}

func TestSessionResetCancelsDemo(t *testing.T) {
	s := newTestStore(t, 10, nil).GetOrCreate("s1")
	s.SetLanguage(models.LangChinese)
	s.AppendUser("hi", "")

	started := make(chan struct{})
	stopped := make(chan struct{})
	s.startDemo(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(stopped)
	})
	<-started
	assert.True(t, s.DemoRunning())

	s.Reset()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("demo was not cancelled")
	}
	assert.False(t, s.DemoRunning())
	assert.Zero(t, s.Len())
	assert.Equal(t, models.LangEnglish, s.Language())
}

func TestSessionStartDemoReplacesRunning(t *testing.T) {
	s := newTestStore(t, 10, nil).GetOrCreate("s1")

	first := make(chan struct{})
	s.startDemo(func(ctx context.Context) {
		<-ctx.Done()
		close(first)
	})

	release := make(chan struct{})
	s.startDemo(func(context.Context) { <-release })
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first demo still running")
	}
	assert.True(t, s.DemoRunning())
	close(release)
	assert.Eventually(t, func() bool { return !s.DemoRunning() }, time.Second, 5*time.Millisecond)
}

func TestSessionStoreEvictsAndExpires(t *testing.T) {
	st := newTestStore(t, 2, nil)
	old := st.GetOrCreate("old")
	newer := st.GetOrCreate("newer")
	now := time.Now()
	old.lastSeen = now.Add(-time.Minute)
	newer.lastSeen = now

	st.GetOrCreate("third")
	assert.Equal(t, 2, st.Len())
	_, ok := st.Get("old")
	assert.False(t, ok)
	assert.Same(t, newer, st.GetOrCreate("newer"))

	assert.Equal(t, 2, st.Expire(now.Add(2*time.Hour)))
	assert.Zero(t, st.Len())
}
