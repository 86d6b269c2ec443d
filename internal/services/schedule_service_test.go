package services

import (
	"context"
	"testing"

	"fitsyncd/internal/models"
	"fitsyncd/internal/syncer"
	"fitsyncd/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleFixture(t *testing.T, connected bool) (*serviceFixture, ScheduleServiceInterface) {
	t.Helper()
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")
	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	if !connected {
		f.monitor.SetConnected(false)
	}
	return f, NewScheduleService(f.session, f.coordinator, f.remote, f.scheduler, &testutil.MockLogger{})
}

func TestAddWorkoutSyncsWhenConnected(t *testing.T) {
	f, schedules := newScheduleFixture(t, true)

	slot, outcome, err := schedules.AddWorkout(context.Background(), "Wednesday", NewWorkoutSlot{
		Time:                "18:00 - 19:00",
		Name:                "Leg day",
		Location:            "Gym",
		ReminderEnabled:     true,
		ReminderLeadMinutes: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, syncer.OutcomeSynced, outcome)
	assert.NotEmpty(t, slot.ID)

	var doc models.ScheduleDoc
	require.NoError(t, json.Unmarshal(f.remote.Docs["schedules/u1"], &doc))
	assert.Equal(t, "Leg day", doc.Schedules[2].Workouts[0].Name)

	// reminder registered for the new slot
	assert.Contains(t, f.notifier.Scheduled, slot.ID)
}

func TestAddWorkoutSavesOfflineAndQueues(t *testing.T) {
	f, schedules := newScheduleFixture(t, false)

	slot, outcome, err := schedules.AddWorkout(context.Background(), "Monday", NewWorkoutSlot{
		Time: "07:00 - 08:00",
		Name: "Run",
	})
	require.NoError(t, err)

	assert.Equal(t, syncer.OutcomeSavedOffline, outcome)
	assert.Equal(t, 1, f.coordinator.QueueDepth())

	// the slot is live in the session even though the remote never saw it
	found := false
	for _, entry := range f.session.Schedules() {
		for _, s := range entry.Workouts {
			if s.ID == slot.ID {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestAddWorkoutValidation(t *testing.T) {
	_, schedules := newScheduleFixture(t, true)
	ctx := context.Background()

	_, _, err := schedules.AddWorkout(ctx, "Monday", NewWorkoutSlot{Time: "07:00 - 08:00"})
	assert.Error(t, err, "name required")

	_, _, err = schedules.AddWorkout(ctx, "Monday", NewWorkoutSlot{Time: "bogus", Name: "X"})
	assert.Error(t, err, "malformed range")

	_, _, err = schedules.AddWorkout(ctx, "Monday", NewWorkoutSlot{Time: "09:00 - 08:00", Name: "X"})
	assert.Error(t, err, "inverted range")

	_, _, err = schedules.AddWorkout(ctx, "Blursday", NewWorkoutSlot{Time: "07:00 - 08:00", Name: "X"})
	assert.Error(t, err, "unknown weekday")

	_, _, err = schedules.AddWorkout(ctx, "Monday", NewWorkoutSlot{Time: "07:00 - 08:00", Name: "X", ReminderLeadMinutes: -5})
	assert.Error(t, err, "negative lead")
}

func TestAddWorkoutAssignsUniqueIDs(t *testing.T) {
	_, schedules := newScheduleFixture(t, true)
	ctx := context.Background()

	a, _, err := schedules.AddWorkout(ctx, "Monday", NewWorkoutSlot{Time: "07:00 - 08:00", Name: "A"})
	require.NoError(t, err)
	b, _, err := schedules.AddWorkout(ctx, "Monday", NewWorkoutSlot{Time: "09:00 - 10:00", Name: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestDeleteWorkoutCancelsReminder(t *testing.T) {
	f, schedules := newScheduleFixture(t, true)
	ctx := context.Background()

	slot, _, err := schedules.AddWorkout(ctx, "Friday", NewWorkoutSlot{
		Time:            "18:00 - 19:00",
		Name:            "Swim",
		ReminderEnabled: true,
	})
	require.NoError(t, err)
	require.Contains(t, f.notifier.Scheduled, slot.ID)

	outcome, err := schedules.DeleteWorkout(ctx, "Friday", slot.ID)
	require.NoError(t, err)

	assert.Equal(t, syncer.OutcomeSynced, outcome)
	assert.NotContains(t, f.notifier.Scheduled, slot.ID)

	var doc models.ScheduleDoc
	require.NoError(t, json.Unmarshal(f.remote.Docs["schedules/u1"], &doc))
	assert.Empty(t, doc.Schedules[4].Workouts)
}

func TestDeleteWorkoutUnknownSlot(t *testing.T) {
	_, schedules := newScheduleFixture(t, true)

	_, err := schedules.DeleteWorkout(context.Background(), "Friday", "ghost")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestScheduleMutationsRequireSession(t *testing.T) {
	f := newServiceFixture(t, true)
	schedules := NewScheduleService(f.session, f.coordinator, f.remote, f.scheduler, &testutil.MockLogger{})

	_, _, err := schedules.AddWorkout(context.Background(), "Monday", NewWorkoutSlot{Time: "07:00 - 08:00", Name: "X"})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = schedules.DeleteWorkout(context.Background(), "Monday", "id")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
