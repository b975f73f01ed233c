package service

import (
	"context"
	"time"

	"FinChat/internal/domain/models"
)

// Emitter is the only way a handler produces output.
type Emitter interface {
	Emit(ctx context.Context, r models.ModuleResult) error
}

// Classifier maps a query to an intent with slots.
type Classifier interface {
	Classify(ctx context.Context, query string) (models.ClassificationResult, error)
}

// Translator returns text in target language. Implementations return the input unchanged on failure
// and report fallback=true.
type Translator interface {
	Translate(ctx context.Context, text, target string) (translated string, fallback bool)
}

// Observer receives chat pipeline measurements.
type Observer interface {
	ObserveDispatch(tier, intent string)
	ObserveClassifier(outcome string, elapsed time.Duration)
	ObserveHandler(module string, failed bool, elapsed time.Duration)
}
