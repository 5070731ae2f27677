package scheduling

import (
	"testing"
	"time"

	"github.com/peter-abel/healthcare/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []entity.AppointmentStatus{
	entity.AppointmentStatusScheduled,
	entity.AppointmentStatusConfirmed,
	entity.AppointmentStatusCompleted,
	entity.AppointmentStatusCancelled,
	entity.AppointmentStatusNoShow,
}

var allActions = []Action{ActionConfirm, ActionComplete, ActionCancel, ActionMarkNoShow}

func TestNext_TransitionTable(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	at := entity.MustTimeOfDay(10, 0)

	legal := map[entity.AppointmentStatus]map[Action]struct {
		date time.Time
		to   entity.AppointmentStatus
	}{
		entity.AppointmentStatusScheduled: {
			ActionConfirm:    {tomorrow, entity.AppointmentStatusConfirmed},
			ActionCancel:     {tomorrow, entity.AppointmentStatusCancelled},
			ActionMarkNoShow: {yesterday, entity.AppointmentStatusNoShow},
		},
		entity.AppointmentStatusConfirmed: {
			ActionComplete:   {tomorrow, entity.AppointmentStatusCompleted},
			ActionCancel:     {tomorrow, entity.AppointmentStatusCancelled},
			ActionMarkNoShow: {yesterday, entity.AppointmentStatusNoShow},
		},
	}

	for _, from := range allStatuses {
		for _, action := range allActions {
			want, ok := legal[from][action]
			date := tomorrow
			if ok {
				date = want.date
			}

			tr, err := Next(from, date, at, action, now)
			if !ok {
				assert.ErrorIs(t, err, ErrIllegalTransition, "%s --%s--> should be illegal", from, action)
				continue
			}
			require.NoError(t, err, "%s --%s-->", from, action)
			assert.Equal(t, Transition{From: from, To: want.to}, tr)
			assert.True(t, tr.Changed())

			// identical inputs, identical outcome
			again, err := Next(from, date, at, action, now)
			require.NoError(t, err)
			assert.Equal(t, tr, again)
		}
	}
}

func TestNext_RepeatIsRejected(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	_, err := Next(entity.AppointmentStatusConfirmed, tomorrow, entity.MustTimeOfDay(9, 0), ActionConfirm, now)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = Next(entity.AppointmentStatusCancelled, tomorrow, entity.MustTimeOfDay(9, 0), ActionCancel, now)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestApply_CompleteRequiresConfirmation(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	apt := &entity.Appointment{
		Date:   time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC),
		Time:   entity.MustTimeOfDay(9, 0),
		Status: entity.AppointmentStatusScheduled,
	}

	_, err := Apply(apt, ActionComplete, now)

	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, entity.AppointmentStatusScheduled, apt.Status, "failed transitions must not mutate")
}

func TestApply_ConfirmedYesterdayBecomesNoShow(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	apt := &entity.Appointment{
		Date:   time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC),
		Time:   entity.MustTimeOfDay(9, 0),
		Status: entity.AppointmentStatusConfirmed,
	}

	tr, err := Apply(apt, ActionMarkNoShow, now)

	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusConfirmed, tr.From)
	assert.Equal(t, entity.AppointmentStatusNoShow, tr.To)
	assert.Equal(t, entity.AppointmentStatusNoShow, apt.Status)
	assert.Equal(t, now, apt.UpdatedAt)
}

func TestApply_NoShowBeforeStartIsRejected(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	apt := &entity.Appointment{
		Date:   time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
		Time:   entity.MustTimeOfDay(12, 0),
		Status: entity.AppointmentStatusScheduled,
	}

	_, err := Apply(apt, ActionMarkNoShow, now)

	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestApply_CancelGuard(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	t.Run("yesterday cannot be cancelled", func(t *testing.T) {
		apt := &entity.Appointment{
			Date:   time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC),
			Time:   entity.MustTimeOfDay(9, 0),
			Status: entity.AppointmentStatusScheduled,
		}
		_, err := Apply(apt, ActionCancel, now)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("earlier today can still be cancelled", func(t *testing.T) {
		apt := &entity.Appointment{
			Date:   time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC),
			Time:   entity.MustTimeOfDay(9, 0),
			Status: entity.AppointmentStatusConfirmed,
		}
		tr, err := Apply(apt, ActionCancel, now)
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentStatusCancelled, tr.To)
	})
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("mark_no_show")
	require.NoError(t, err)
	assert.Equal(t, ActionMarkNoShow, a)

	_, err = ParseAction("reopen")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestAvailable_AppliesGuards(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)
	nine := entity.MustTimeOfDay(9, 0)
	fourPM := entity.MustTimeOfDay(16, 0)

	tests := []struct {
		name   string
		status entity.AppointmentStatus
		date   time.Time
		at     entity.TimeOfDay
		want   []Action
	}{
		{"scheduled tomorrow cannot be a no-show yet", entity.AppointmentStatusScheduled, tomorrow, nine, []Action{ActionConfirm, ActionCancel}},
		{"confirmed later today", entity.AppointmentStatusConfirmed, today, fourPM, []Action{ActionComplete, ActionCancel}},
		{"confirmed earlier today", entity.AppointmentStatusConfirmed, today, nine, []Action{ActionComplete, ActionCancel, ActionMarkNoShow}},
		{"scheduled yesterday", entity.AppointmentStatusScheduled, yesterday, nine, []Action{ActionConfirm, ActionMarkNoShow}},
		{"completed", entity.AppointmentStatusCompleted, yesterday, nine, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Available(tt.status, tt.date, tt.at, now)
			assert.Equal(t, tt.want, got)
			for _, a := range got {
				_, err := Next(tt.status, tt.date, tt.at, a, now)
				assert.NoError(t, err)
			}
		})
	}
}
