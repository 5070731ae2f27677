package service

import (
	"context"
	"fmt"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/peter-abel/healthcare/internal/infrastructure/queue"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// NotificationSink accepts events after a durable state change. Delivery is
// asynchronous and at-least-once; Enqueue only reports whether the hand-off worked.
type NotificationSink interface {
	Enqueue(ctx context.Context, event entity.NotificationEvent) error
}

// TaskEnqueuer is the part of *asynq.Client the sink needs
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type asynqNotificationSink struct {
	client   TaskEnqueuer
	maxRetry int
	log      *logrus.Logger
}

func NewAsynqNotificationSink(client TaskEnqueuer, maxRetry int, log *logrus.Logger) NotificationSink {
	return &asynqNotificationSink{
		client:   client,
		maxRetry: maxRetry,
		log:      log,
	}
}

func (s *asynqNotificationSink) Enqueue(ctx context.Context, event entity.NotificationEvent) error {
	task, err := queue.NewNotifyTask(event, s.maxRetry)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s for appointment %s: %w", event.Kind, event.AppointmentID, err)
	}

	s.log.WithFields(logrus.Fields{
		"appointment_id": event.AppointmentID,
		"kind":           event.Kind,
		"task_id":        info.ID,
	}).Debug("Notification enqueued")
	return nil
}
