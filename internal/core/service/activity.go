package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

var _ port.ActivitySaver = (*ActivityService)(nil)

// ActivityService persists the admin activity stream and runs the
// per-resource counter.
type ActivityService struct {
	storage     port.ActivityStorage
	counterProc port.ActivityCounterProcessor
}

func NewActivityService(
	storage port.ActivityStorage,
	counterProc port.ActivityCounterProcessor,
) ActivityService {
	return ActivityService{storage, counterProc}
}

// Run runs the counter processor in a separate goroutine.
//
// Blocks current goroutine while the processor is preparing to ready state.
func (s ActivityService) Run(ctx context.Context, stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	wg.Add(1)
	go s.counterProc.Run(ctx, stopFn, &wg)
	wg.Wait()
}

func (s ActivityService) Close() {
	s.counterProc.Close()
}

func (s ActivityService) SaveActivity(
	ctx context.Context, as []domain.Activity,
) error {
	const op = "ActivityService.SaveActivity"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(as) == 0 {
		return nil
	}

	err := s.storage.StoreActivity(ctx, as)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
