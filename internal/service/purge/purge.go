// Package purge runs the centralized store-side purge. It is the scheduled
// counterpart of the client-triggered purge endpoint and is disabled unless
// an interval is configured.
package purge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/blinkroom/chat-service/internal/metrics"
	"github.com/blinkroom/chat-service/internal/model"
)

type DBRepo interface {
	PurgeExpired(ctx context.Context, window time.Duration) ([]uuid.UUID, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.RoomEvent) error
}

type Worker struct {
	repository DBRepo
	events     EventPublisher
	interval   time.Duration
	window     time.Duration
	logger     logger_lib.LoggerInterface
}

func New(repo DBRepo, events EventPublisher, interval, window time.Duration, logger logger_lib.LoggerInterface) *Worker {
	return &Worker{
		repository: repo,
		events:     events,
		interval:   interval,
		window:     window,
		logger:     logger,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.logger.Info("scheduled purge disabled")
		return nil
	}

	w.logger.Info(fmt.Sprintf("scheduled purge every %s", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce deletes expired rows and announces them. A failed run is logged
// and dropped; the next tick is the retry.
func (w *Worker) runOnce(ctx context.Context) {
	ids, err := w.repository.PurgeExpired(ctx, w.window)
	if err != nil {
		w.logger.Error(fmt.Sprintf("failed to purge expired messages: %v", err))
		return
	}

	if len(ids) == 0 {
		return
	}
	metrics.MessagesPurged.Add(float64(len(ids)))

	event := model.RoomEvent{
		Type: model.EventDelete,
		IDs:  ids,
	}
	if err = w.events.Publish(ctx, event); err != nil {
		w.logger.Error(fmt.Sprintf("failed to publish delete event: %v", err))
	}
}
