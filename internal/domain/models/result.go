package models

import (
	"time"

	"github.com/google/uuid"
)

// Module tags used in RelatedModules and as ModuleResult.Module.
const (
	ModuleNews        = "news"
	ModuleEarnings    = "earnings"
	ModuleValuation   = "valuation"
	ModuleData        = "data"
	ModuleFDA         = "fda"
	ModuleAnalysis    = "analysis"
	ModuleRumor       = "rumor"
	ModuleNewsBrief   = "newsbrief"
	ModulePerformance = "performance"
	ModuleTwitter     = "twitter"
	ModuleCompetitive = "competitive"
	ModuleGeneral     = "general"
	ModuleScreening   = "screening"
	ModuleDispatcher  = "dispatcher"
	ModuleDemo        = "demo"
)

// ModuleResult is the envelope every handler emits. Exactly one of Content and ErrorMessage is set.
type ModuleResult struct {
	ID             string    `json:"id"`
	Module         string    `json:"module"`
	Content        string    `json:"content,omitempty"`
	RelatedModules []string  `json:"related_modules,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Placeholder    bool      `json:"placeholder,omitempty"`
	Options        []string  `json:"options,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewResult(module, content string, related ...string) ModuleResult {
	return ModuleResult{
		ID:             uuid.NewString(),
		Module:         module,
		Content:        content,
		RelatedModules: related,
		CreatedAt:      time.Now().UTC(),
	}
}

func NewErrorResult(module, message string) ModuleResult {
	return ModuleResult{
		ID:           uuid.NewString(),
		Module:       module,
		ErrorMessage: message,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewPlaceholder is a "processing" notice emitted ahead of a slow call.
func NewPlaceholder(module, content string) ModuleResult {
	r := NewResult(module, content)
	r.Placeholder = true
	return r
}

// NewOptionsResult asks the user to pick one of options.
func NewOptionsResult(module, content string, options []string) ModuleResult {
	r := NewResult(module, content)
	r.Options = options
	return r
}

func (r ModuleResult) Failed() bool { return r.ErrorMessage != "" }

// Body is the displayable payload, whichever of content or error it is.
func (r ModuleResult) Body() string {
	if r.Failed() {
		return r.ErrorMessage
	}
	return r.Content
}
