// Package translate renders chat text between English and Simplified Chinese.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/internal/service/slots"
	"FinChat/pkg/cache"
	"FinChat/pkg/logger"
)

var ErrEmptyTranslation = errors.New("empty translation")

var languageNames = map[string]string{
	models.LangChinese: "Simplified Chinese",
	models.LangEnglish: "English",
}

type Completer interface {
	Configured() bool
	Ask(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

type Service struct {
	llm   Completer
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
	mock  bool
}

func New(c Completer, store cache.Service, ttl time.Duration, log *logger.Logger, mock bool) *Service {
	return &Service{llm: c, cache: store, ttl: ttl, log: log, mock: mock}
}

// Configured reports whether real translations can be produced.
func (s *Service) Configured() bool {
	return s.mock || (s.llm != nil && s.llm.Configured())
}

// Translate never fails: on any error it returns text unchanged with fallback=true.
func (s *Service) Translate(ctx context.Context, text, target string) (string, bool) {
	out, err := s.TranslateStrict(ctx, text, target)
	if err != nil {
		s.log.Warn("translation fell back to original",
			logger.String("target", target),
			logger.Int("chars", len(text)),
			logger.Error(err))
		return text, true
	}
	return out, false
}

// TranslateStrict is Translate with the failure surfaced. Successful results are cached per target and text.
func (s *Service) TranslateStrict(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranslation
	}
	if target == "" {
		target = models.LangChinese
	}
	if s.mock {
		return fmt.Sprintf("[%s] %s", target, text), nil
	}
	if !s.Configured() {
		return "", llm.ErrNotConfigured
	}

	key := cache.Key("translate", target, cache.HashKey(text))
	return cache.GetOrLoad(ctx, s.cache, key, s.ttl, func(ctx context.Context) (string, error) {
		return s.translate(ctx, text, target)
	})
}

func (s *Service) translate(ctx context.Context, text, target string) (string, error) {
	name, ok := languageNames[target]
	if !ok {
		name = "English"
	}
	system := "You are a professional translator. Translate the following text to " + name +
		". Maintain the original formatting, HTML tags, and structure. Return ONLY the translated text without any explanations."

	out, err := s.llm.Ask(ctx, system, text, 0.7, 2000)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

// IsChinese reports whether text should switch the session to Chinese: it contains a CJK
// ideograph or whatlanggo reliably detects Mandarin or Japanese.
func IsChinese(text string) bool {
	if slots.ContainsCJK(text) {
		return true
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return false
	}
	return info.Lang == whatlanggo.Cmn || info.Lang == whatlanggo.Jpn
}
