// Package worker runs background jobs next to the API server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sentinel/config"
	"sentinel/internal/delivery"
	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/domain/lifecycle"
	"sentinel/internal/errors"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const defaultInterval = time.Hour

// housekeepingWorker purges dead ledger rows on a fixed interval.
type housekeepingWorker struct {
	enabled  bool
	interval time.Duration
	uc       usecase.HousekeepingUsecase
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// ServerParams holds dependencies for the worker
type ServerParams struct {
	fx.In

	Lc             fx.Lifecycle
	Cfg            *config.Config
	Logger         *slog.Logger
	HousekeepingUC usecase.HousekeepingUsecase
}

// NewServer creates the housekeeping worker
func NewServer(params ServerParams) (delivery.Delivery, error) {
	w := newHousekeepingWorker(params.Cfg.Housekeeping, params.HousekeepingUC, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: w.stop,
	})

	return w, nil
}

func newHousekeepingWorker(cfg *config.HousekeepingConfig, uc usecase.HousekeepingUsecase, logger *slog.Logger) *housekeepingWorker {
	w := &housekeepingWorker{
		interval: defaultInterval,
		uc:       uc,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	if cfg != nil {
		w.enabled = cfg.Enabled
		if cfg.Interval > 0 {
			w.interval = cfg.Interval
		}
	}

	return w
}

// Serve runs one pass immediately and then one per interval until stopped.
func (w *housekeepingWorker) Serve(ctx context.Context) error {
	defer close(w.done)

	if !w.enabled {
		w.logger.Info("Housekeeping worker disabled")

		return nil
	}

	w.logger.Info("Starting housekeeping worker", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		case <-ticker.C:
		}
	}
}

func (w *housekeepingWorker) runOnce(ctx context.Context) {
	runID := uuid.New().String()
	logger := w.logger.With(slog.String("run_id", runID))
	ctx = deliverycontext.WithLogger(deliverycontext.WithRequestID(ctx, runID), logger)

	if _, err := w.uc.PurgeExpired(ctx); err != nil {
		logger.Error("Housekeeping pass failed", slog.Any("error", err))
	}
}

// stop signals the loop and waits for the current pass to finish
func (w *housekeepingWorker) stop(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })

	if !w.enabled {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	w.logger.Info("Shutting down housekeeping worker")

	select {
	case <-w.done:
		return nil
	case <-waitCtx.Done():
		return errors.Wrap(waitCtx.Err(), "housekeeping worker did not stop in time")
	}
}
