package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"

	"github.com/hibiken/asynq"
)

// Task types handled by the worker
const (
	TypeAppointmentNotify = "appointment:notify"
	TypeNoShowSweep       = "appointment:sweep_no_show"
	TypeSendReminders     = "appointment:send_reminders"
)

// Queue names, weighted in NewServer
const (
	QueueNotifications = "notifications"
	QueueMaintenance   = "maintenance"
)

// NewNotifyTask wraps a notification event; maxRetry bounds redelivery of a failed send
func NewNotifyTask(event entity.NotificationEvent, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode notification event: %w", err)
	}
	return asynq.NewTask(TypeAppointmentNotify, payload,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(30*time.Second),
	), nil
}

// ParseNotifyTask decodes the payload built by NewNotifyTask
func ParseNotifyTask(task *asynq.Task) (entity.NotificationEvent, error) {
	var event entity.NotificationEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("decode notification event: %w", err)
	}
	return event, nil
}

// Periodic sweeps carry no payload; the handler reads the clock when it runs.
// A single retry is enough because the next tick repeats the work anyway.
func newSweepTask(taskType string) *asynq.Task {
	return asynq.NewTask(taskType, nil,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
}
