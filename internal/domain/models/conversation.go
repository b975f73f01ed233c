package models

import (
	"time"

	"github.com/google/uuid"
)

// Display languages.
const (
	LangEnglish = "en"
	LangChinese = "zh-CN"
)

// Source languages recorded on a RoutedQuery.
const (
	SourceEnglish = "en"
	SourceChinese = "zh"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// ConversationTurn is one transcript entry. ContentEn is canonical; ContentZh caches the translation.
type ConversationTurn struct {
	ID             string    `json:"id"`
	Sender         Sender    `json:"sender"`
	Module         string    `json:"module,omitempty"`
	ContentEn      string    `json:"content_en"`
	ContentZh      string    `json:"content_zh,omitempty"`
	RelatedModules []string  `json:"related_modules,omitempty"`
	Placeholder    bool      `json:"placeholder,omitempty"`
	Failed         bool      `json:"failed,omitempty"`
	Options        []string  `json:"options,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUserTurn stores what the user typed; zh is empty for English input.
func NewUserTurn(en, zh string) *ConversationTurn {
	return &ConversationTurn{
		ID:        uuid.NewString(),
		Sender:    SenderUser,
		ContentEn: en,
		ContentZh: zh,
		CreatedAt: time.Now().UTC(),
	}
}

func NewAgentTurn(r ModuleResult) *ConversationTurn {
	return &ConversationTurn{
		ID:             r.ID,
		Sender:         SenderAgent,
		Module:         r.Module,
		ContentEn:      r.Body(),
		RelatedModules: r.RelatedModules,
		Placeholder:    r.Placeholder,
		Failed:         r.Failed(),
		Options:        r.Options,
		CreatedAt:      r.CreatedAt,
	}
}

// NeedsTranslation reports whether rendering in lang requires a translation that is not cached yet.
func (t *ConversationTurn) NeedsTranslation(lang string) bool {
	return lang == LangChinese && t.ContentZh == "" && t.ContentEn != ""
}

// Render returns the variant for lang, falling back to whichever exists.
func (t *ConversationTurn) Render(lang string) string {
	if lang == LangChinese && t.ContentZh != "" {
		return t.ContentZh
	}
	if t.ContentEn != "" {
		return t.ContentEn
	}
	return t.ContentZh
}

// RenderedTurn is a turn as shown to the client.
type RenderedTurn struct {
	ID             string    `json:"id"`
	Sender         Sender    `json:"sender"`
	Module         string    `json:"module,omitempty"`
	Content        string    `json:"content"`
	RelatedModules []string  `json:"related_modules,omitempty"`
	Placeholder    bool      `json:"placeholder,omitempty"`
	Failed         bool      `json:"failed,omitempty"`
	Options        []string  `json:"options,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (t *ConversationTurn) Rendered(lang string) RenderedTurn {
	return RenderedTurn{
		ID:             t.ID,
		Sender:         t.Sender,
		Module:         t.Module,
		Content:        t.Render(lang),
		RelatedModules: t.RelatedModules,
		Placeholder:    t.Placeholder,
		Failed:         t.Failed,
		Options:        t.Options,
		CreatedAt:      t.CreatedAt,
	}
}
