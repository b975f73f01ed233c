package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/pkg/cache"
	"FinChat/pkg/logger"
)

type fakeLLM struct {
	calls int
	out   string
	err   error
}

func (f *fakeLLM) Configured() bool { return true }

func (f *fakeLLM) Ask(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestTranslateCachesResult(t *testing.T) {
	llm := &fakeLLM{out: "你好"}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	s := New(llm, mem, time.Hour, logger.Nop(), false)

	for i := 0; i < 3; i++ {
		got, fallback := s.Translate(context.Background(), "hello", "zh-CN")
		assert.Equal(t, "你好", got)
		assert.False(t, fallback)
	}
	assert.Equal(t, 1, llm.calls)
}

func TestTranslateFallback(t *testing.T) {
	s := New(&fakeLLM{err: errors.New("boom")}, nil, time.Hour, logger.Nop(), false)
	got, fallback := s.Translate(context.Background(), "hello", "zh-CN")
	assert.Equal(t, "hello", got)
	assert.True(t, fallback)

	s = New(&fakeLLM{out: "  "}, nil, time.Hour, logger.Nop(), false)
	got, fallback = s.Translate(context.Background(), "hello", "zh-CN")
	assert.Equal(t, "hello", got)
	assert.True(t, fallback)
}

func TestTranslateMock(t *testing.T) {
	s := New(nil, nil, 0, logger.Nop(), true)
	got, err := s.TranslateStrict(context.Background(), "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "[en] hi", got)
}

func TestIsChinese(t *testing.T) {
	assert.True(t, IsChinese("特斯拉的财报怎么样"))
	assert.True(t, IsChinese("TSLA 估值"))
	assert.False(t, IsChinese("What is the latest news on Apple?"))
	assert.False(t, IsChinese(""))
}
