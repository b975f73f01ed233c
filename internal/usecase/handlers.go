package usecase

import (
	"context"
	"fmt"
	"time"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/logger"
)

// Handlers owns the specialist modules. Each handler emits an optional placeholder and then
// exactly one result or error envelope; errors never escape to the dispatcher.
type Handlers struct {
	news      domsvc.NewsService
	metrics   domsvc.KeyMetricsService
	valuation *ValuationUseCase
	fda       domsvc.FDACalendar
	earnings  *EarningsUseCase
	analyst   domsvc.Analyst
	observer  domsvc.Observer
	log       *logger.Logger
	now       func() time.Time
}

func NewHandlers(
	news domsvc.NewsService,
	metrics domsvc.KeyMetricsService,
	valuation *ValuationUseCase,
	fda domsvc.FDACalendar,
	earnings *EarningsUseCase,
	analyst domsvc.Analyst,
	observer domsvc.Observer,
	log *logger.Logger,
) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		news:      news,
		metrics:   metrics,
		valuation: valuation,
		fda:       fda,
		earnings:  earnings,
		analyst:   analyst,
		observer:  observer,
		log:       log,
		now:       time.Now,
	}
}

// failure is what the user sees when a handler gives up.
type failure struct {
	prefix string
	tip    string
}

// run emits placeholder (when set), executes fn and emits its result, or the failure envelope.
// The returned error is only ever an emitter error.
func (h *Handlers) run(ctx context.Context, em domsvc.Emitter, module, placeholder string, fail failure, fn func() (models.ModuleResult, error)) error {
	start := time.Now()
	if placeholder != "" {
		if err := em.Emit(ctx, models.NewPlaceholder(module, placeholder)); err != nil {
			return err
		}
	}

	res, err := guard(fn)
	if err != nil {
		h.log.Warn("handler failed", logger.String("module", module), logger.Error(err))
		res = models.NewErrorResult(module, errorHTML(fail.prefix, err, fail.tip))
	}
	if h.observer != nil {
		h.observer.ObserveHandler(module, res.Failed(), time.Since(start))
	}
	return em.Emit(ctx, res)
}

func guard(fn func() (models.ModuleResult, error)) (res models.ModuleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return fn()
}
