package scheduling

import (
	"fmt"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"
)

// Action is an explicit request to move an appointment to another status
type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionMarkNoShow Action = "mark_no_show"
)

// ParseAction validates an action name received from a caller
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionConfirm, ActionComplete, ActionCancel, ActionMarkNoShow:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Transition is the (from, to) status pair produced by a successful action
type Transition struct {
	From entity.AppointmentStatus
	To   entity.AppointmentStatus
}

// Changed reports whether a change notification should be emitted
func (t Transition) Changed() bool {
	return t.From != t.To
}

// guard is an extra condition evaluated against the appointment start and the current instant
type guard func(date time.Time, at entity.TimeOfDay, now time.Time) error

type edge struct {
	to    entity.AppointmentStatus
	guard guard
}

// transitions lists every legal (status, action) pair; anything absent is illegal,
// including repeats such as confirming an already confirmed appointment.
var transitions = map[entity.AppointmentStatus]map[Action]edge{
	entity.AppointmentStatusScheduled: {
		ActionConfirm:    {to: entity.AppointmentStatusConfirmed},
		ActionCancel:     {to: entity.AppointmentStatusCancelled, guard: notBeforeToday},
		ActionMarkNoShow: {to: entity.AppointmentStatusNoShow, guard: alreadyStarted},
	},
	entity.AppointmentStatusConfirmed: {
		ActionComplete:   {to: entity.AppointmentStatusCompleted},
		ActionCancel:     {to: entity.AppointmentStatusCancelled, guard: notBeforeToday},
		ActionMarkNoShow: {to: entity.AppointmentStatusNoShow, guard: alreadyStarted},
	},
}

// notBeforeToday allows cancelling up to the end of the appointment's day,
// so a same-day appointment whose time already passed can still be cancelled.
func notBeforeToday(date time.Time, _ entity.TimeOfDay, now time.Time) error {
	today := entity.AsDate(now.In(date.Location()), date.Location())
	if entity.AsDate(date, date.Location()).Before(today) {
		return fmt.Errorf("%w: past appointments cannot be cancelled", ErrIllegalTransition)
	}
	return nil
}

func alreadyStarted(date time.Time, at entity.TimeOfDay, now time.Time) error {
	if !at.On(date).Before(now) {
		return fmt.Errorf("%w: appointment has not started yet", ErrIllegalTransition)
	}
	return nil
}

// Next computes the outcome of applying action to an appointment in status from,
// scheduled at date and time. It does not mutate anything.
func Next(from entity.AppointmentStatus, date time.Time, at entity.TimeOfDay, action Action, now time.Time) (Transition, error) {
	e, ok := transitions[from][action]
	if !ok {
		return Transition{}, fmt.Errorf("%w: cannot %s an appointment in status %s", ErrIllegalTransition, action, from)
	}
	if e.guard != nil {
		if err := e.guard(date, at, now); err != nil {
			return Transition{}, err
		}
	}
	return Transition{From: from, To: e.to}, nil
}

// Apply is the only mutator of an appointment's status.
// On success the appointment carries the new status and the (from, to) pair is returned.
func Apply(apt *entity.Appointment, action Action, now time.Time) (Transition, error) {
	tr, err := Next(apt.Status, apt.Date, apt.Time, action, now)
	if err != nil {
		return Transition{}, err
	}
	apt.Status = tr.To
	apt.UpdatedAt = now
	return tr, nil
}

// Available lists, in a stable order, the actions Next would accept right now
// for an appointment in status scheduled at date and time
func Available(status entity.AppointmentStatus, date time.Time, at entity.TimeOfDay, now time.Time) []Action {
	var actions []Action
	for _, a := range []Action{ActionConfirm, ActionComplete, ActionCancel, ActionMarkNoShow} {
		if _, err := Next(status, date, at, a, now); err == nil {
			actions = append(actions, a)
		}
	}
	return actions
}
