package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/peter-abel/healthcare/internal/infrastructure/queue"
	"github.com/peter-abel/healthcare/internal/usecase"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Handler consumes queued notification and maintenance tasks
type Handler struct {
	log                 *logrus.Logger
	loc                 *time.Location
	now                 func() time.Time
	bookingCoordinator  usecase.BookingCoordinator
	notificationUsecase usecase.NotificationUsecase
}

func NewHandler(
	log *logrus.Logger,
	loc *time.Location,
	bookingCoordinator usecase.BookingCoordinator,
	notificationUsecase usecase.NotificationUsecase,
) *Handler {
	return &Handler{
		log:                 log,
		loc:                 loc,
		now:                 time.Now,
		bookingCoordinator:  bookingCoordinator,
		notificationUsecase: notificationUsecase,
	}
}

// Register binds every task type to its handler
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.Use(h.logging)
	mux.HandleFunc(queue.TypeAppointmentNotify, h.HandleNotify)
	mux.HandleFunc(queue.TypeNoShowSweep, h.HandleNoShowSweep)
	mux.HandleFunc(queue.TypeSendReminders, h.HandleSendReminders)
}

func (h *Handler) HandleNotify(ctx context.Context, task *asynq.Task) error {
	event, err := queue.ParseNotifyTask(task)
	if err != nil {
		// a payload that cannot be decoded will never succeed
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return h.notificationUsecase.Dispatch(ctx, event)
}

func (h *Handler) HandleNoShowSweep(ctx context.Context, _ *asynq.Task) error {
	swept, err := h.bookingCoordinator.SweepNoShows(ctx, h.now().In(h.loc))
	if swept > 0 {
		h.log.Infof("Marked %d appointment(s) as no-show", swept)
	}
	return err
}

func (h *Handler) HandleSendReminders(ctx context.Context, _ *asynq.Task) error {
	queued, err := h.bookingCoordinator.EnqueueReminders(ctx, h.now().In(h.loc))
	if queued > 0 {
		h.log.Infof("Queued %d reminder(s)", queued)
	}
	return err
}

func (h *Handler) logging(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, task)

		entry := h.log.WithFields(logrus.Fields{
			"task":     task.Type(),
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.Warnf("Task failed: %v", err)
			return err
		}
		entry.Debug("Task processed")
		return nil
	})
}
