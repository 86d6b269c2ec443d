package services

import (
	"context"
	"errors"
	"fmt"

	"fitsyncd/internal/models"
	"fitsyncd/internal/notify"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/storage"
	"fitsyncd/internal/syncer"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrSlotNotFound indicates an unknown day or slot id in a delete request.
var ErrSlotNotFound = errors.New("workout slot not found")

// NewWorkoutSlot carries the user-supplied fields for a slot; the id is
// assigned here.
type NewWorkoutSlot struct {
	Time                string `json:"time"`
	Name                string `json:"name"`
	Location            string `json:"location"`
	ReminderEnabled     bool   `json:"reminder_enabled"`
	ReminderLeadMinutes int    `json:"reminder_lead_minutes"`
}

type ScheduleServiceInterface interface {
	List() []models.ScheduleEntry
	AddWorkout(ctx context.Context, day string, input NewWorkoutSlot) (*models.WorkoutSlot, syncer.Outcome, error)
	DeleteWorkout(ctx context.Context, day, slotID string) (syncer.Outcome, error)
	SaveSchedules(ctx context.Context, schedules []models.ScheduleEntry) (syncer.Outcome, error)
}

// ScheduleService mutates the weekly schedule. Every mutation goes through
// the guarded write path, so it succeeds offline, and keeps the reminder set
// in step with the slot list.
type ScheduleService struct {
	session     SessionServiceInterface
	coordinator syncer.CoordinatorInterface
	remote      storage.RemoteStoreInterface
	scheduler   notify.SchedulerInterface
	logger      providers.Logger
}

func NewScheduleService(session SessionServiceInterface, coordinator syncer.CoordinatorInterface, remote storage.RemoteStoreInterface, scheduler notify.SchedulerInterface, logger providers.Logger) ScheduleServiceInterface {
	return &ScheduleService{
		session:     session,
		coordinator: coordinator,
		remote:      remote,
		scheduler:   scheduler,
		logger:      logger,
	}
}

func (s *ScheduleService) List() []models.ScheduleEntry {
	return s.session.Schedules()
}

// AddWorkout appends a slot to one weekday and persists the full document.
// When reminders are on for both the slot and the account, its trigger is
// registered immediately.
func (s *ScheduleService) AddWorkout(ctx context.Context, day string, input NewWorkoutSlot) (*models.WorkoutSlot, syncer.Outcome, error) {
	if _, ok := s.session.CurrentUser(); !ok {
		return nil, syncer.OutcomeSavedOffline, ErrNotSignedIn
	}
	if input.Name == "" {
		return nil, syncer.OutcomeSavedOffline, errors.New("workout name is required")
	}
	startMin, endMin, err := models.ParseTimeRange(input.Time)
	if err != nil {
		return nil, syncer.OutcomeSavedOffline, err
	}
	if endMin <= startMin {
		return nil, syncer.OutcomeSavedOffline, fmt.Errorf("time range %q ends before it starts", input.Time)
	}
	if input.ReminderLeadMinutes < 0 {
		return nil, syncer.OutcomeSavedOffline, errors.New("reminder lead minutes must not be negative")
	}

	slot := models.WorkoutSlot{
		ID:                  uuid.NewString(),
		Time:                input.Time,
		Name:                input.Name,
		Location:            input.Location,
		ReminderEnabled:     input.ReminderEnabled,
		ReminderLeadMinutes: input.ReminderLeadMinutes,
	}

	schedules, found := appendSlot(s.session.Schedules(), day, slot)
	if !found {
		return nil, syncer.OutcomeSavedOffline, fmt.Errorf("unknown weekday %q", day)
	}

	outcome, err := s.SaveSchedules(ctx, schedules)
	if err != nil {
		return nil, outcome, err
	}

	if slot.ReminderEnabled && s.session.Settings().Enabled {
		if triggerAt, err := s.scheduler.ScheduleJob(slot, day); err != nil {
			s.logger.Warnf(providers.TypeNotify, "Could not schedule reminder for new slot %s: %s", slot.ID, err)
		} else {
			s.logger.Debugf(providers.TypeNotify, "Reminder for slot %s set for %s", slot.ID, triggerAt)
		}
	}
	return &slot, outcome, nil
}

// DeleteWorkout removes a slot and cancels its pending trigger, queued or
// not — a reminder must never fire for a deleted slot.
func (s *ScheduleService) DeleteWorkout(ctx context.Context, day, slotID string) (syncer.Outcome, error) {
	if _, ok := s.session.CurrentUser(); !ok {
		return syncer.OutcomeSavedOffline, ErrNotSignedIn
	}

	schedules, found := removeSlot(s.session.Schedules(), day, slotID)
	if !found {
		return syncer.OutcomeSavedOffline, ErrSlotNotFound
	}

	s.scheduler.CancelJob(slotID)

	return s.SaveSchedules(ctx, schedules)
}

// SaveSchedules persists the whole seven-entry document through the guarded
// write path and publishes the new state to the session.
func (s *ScheduleService) SaveSchedules(ctx context.Context, schedules []models.ScheduleEntry) (syncer.Outcome, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return syncer.OutcomeSavedOffline, ErrNotSignedIn
	}

	payload, err := json.Marshal(&models.ScheduleDoc{Schedules: schedules})
	if err != nil {
		return syncer.OutcomeSavedOffline, err
	}

	outcome, err := s.coordinator.GuardedWrite(ctx, models.ScheduleKey(user.ID), payload, func(ctx context.Context, payload []byte) error {
		return s.remote.SetDoc(ctx, models.SchedulesCollection, user.ID, payload)
	})
	if err != nil {
		return outcome, err
	}

	s.session.SetSchedules(schedules)
	return outcome, nil
}

// appendSlot returns a copy of schedules with slot added to the named day.
func appendSlot(schedules []models.ScheduleEntry, day string, slot models.WorkoutSlot) ([]models.ScheduleEntry, bool) {
	out := make([]models.ScheduleEntry, len(schedules))
	found := false
	for i, entry := range schedules {
		out[i] = entry
		if entry.Day == day {
			workouts := make([]models.WorkoutSlot, len(entry.Workouts), len(entry.Workouts)+1)
			copy(workouts, entry.Workouts)
			out[i].Workouts = append(workouts, slot)
			found = true
		}
	}
	return out, found
}

// removeSlot returns a copy of schedules with the slot removed.
func removeSlot(schedules []models.ScheduleEntry, day, slotID string) ([]models.ScheduleEntry, bool) {
	out := make([]models.ScheduleEntry, len(schedules))
	found := false
	for i, entry := range schedules {
		out[i] = entry
		if entry.Day != day {
			continue
		}
		kept := make([]models.WorkoutSlot, 0, len(entry.Workouts))
		for _, slot := range entry.Workouts {
			if slot.ID == slotID {
				found = true
				continue
			}
			kept = append(kept, slot)
		}
		out[i].Workouts = kept
	}
	return out, found
}
