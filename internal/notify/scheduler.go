// Package notify computes next trigger instants for recurring weekly
// workout reminders and keeps the device's pending-trigger set free of
// duplicates and orphans.
package notify

import (
	"fmt"
	"strings"
	"time"

	"fitsyncd/internal/models"
	"fitsyncd/internal/providers"
)

type SchedulerInterface interface {
	ScheduleJob(slot models.WorkoutSlot, day string) (time.Time, error)
	CancelJob(id string)
	CancelAll()
	RescheduleAll(schedules []models.ScheduleEntry)
	ExpireWorkoutSlots(schedules []models.ScheduleEntry, now time.Time) ([]models.ScheduleEntry, bool)
}

type Scheduler struct {
	notifier providers.NotifierInterface
	clock    providers.Clock
	logger   providers.Logger
}

func NewScheduler(notifier providers.NotifierInterface, clock providers.Clock, logger providers.Logger) SchedulerInterface {
	return &Scheduler{
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// NextOccurrence returns the next instant matching weekday at clock ("HH:mm")
// minus leadMinutes. When that instant is at or before now — the lead time on
// the nearest occurrence has already elapsed — it advances by exactly seven
// days rather than re-scanning weekdays, so the result is always in the
// future and the nearest occurrence never double-fires.
func NextOccurrence(day time.Weekday, clock string, leadMinutes int, now time.Time) (time.Time, error) {
	minutes, err := models.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	daysAhead := (int(day) - int(now.Weekday()) + 7) % 7
	trigger := time.Date(now.Year(), now.Month(), now.Day()+daysAhead,
		minutes/60, minutes%60, 0, 0, now.Location())
	trigger = trigger.Add(-time.Duration(leadMinutes) * time.Minute)

	if !trigger.After(now) {
		trigger = trigger.AddDate(0, 0, 7)
	}
	return trigger, nil
}

// ScheduleJob registers the reminder for one slot, replacing any pending
// trigger with the same id first.
func (s *Scheduler) ScheduleJob(slot models.WorkoutSlot, day string) (time.Time, error) {
	weekday, err := models.ParseWeekday(day)
	if err != nil {
		return time.Time{}, err
	}

	start, _, found := strings.Cut(slot.Time, " - ")
	if !found {
		return time.Time{}, fmt.Errorf("slot %s has malformed time range %q", slot.ID, slot.Time)
	}

	triggerAt, err := NextOccurrence(weekday, start, slot.ReminderLeadMinutes, s.clock.Now())
	if err != nil {
		return time.Time{}, err
	}

	if err := s.notifier.Cancel(slot.ID); err != nil {
		return time.Time{}, err
	}

	title := "Workout Reminder"
	body := fmt.Sprintf("Your %s workout will start at %s", slot.Name, strings.TrimSpace(start))
	if slot.Location != "" {
		body += " at " + slot.Location
	}
	if err := s.notifier.ScheduleAt(slot.ID, triggerAt, title, body); err != nil {
		return time.Time{}, err
	}
	return triggerAt, nil
}

// CancelJob drops the pending trigger for a slot id. Unknown ids are a no-op.
func (s *Scheduler) CancelJob(id string) {
	_ = s.notifier.Cancel(id)
}

// CancelAll clears the whole pending set. Used on logout and before a full
// schedule reload so stale triggers never survive a session switch.
func (s *Scheduler) CancelAll() {
	_ = s.notifier.CancelAll()
}

// RescheduleAll rebuilds the pending set from the given schedule: cancel
// everything, then register every reminder-enabled slot once.
func (s *Scheduler) RescheduleAll(schedules []models.ScheduleEntry) {
	s.CancelAll()
	for _, entry := range schedules {
		for _, slot := range entry.Workouts {
			if !slot.ReminderEnabled {
				continue
			}
			if _, err := s.ScheduleJob(slot, entry.Day); err != nil {
				s.logger.Warnf(providers.TypeNotify, "Could not schedule reminder for slot %s: %s", slot.ID, err)
			}
		}
	}
}

// ExpireWorkoutSlots removes every slot on today's entry whose end time has
// already passed, canceling its trigger. Slots on other weekdays are upcoming
// occurrences and are left alone. The returned flag is false when nothing
// expired, letting callers skip a redundant persistence write.
func (s *Scheduler) ExpireWorkoutSlots(schedules []models.ScheduleEntry, now time.Time) ([]models.ScheduleEntry, bool) {
	nowMinutes := now.Hour()*60 + now.Minute()
	changed := false

	out := make([]models.ScheduleEntry, len(schedules))
	for i, entry := range schedules {
		out[i] = entry

		weekday, err := models.ParseWeekday(entry.Day)
		if err != nil || weekday != now.Weekday() {
			continue
		}

		kept := entry.Workouts[:0:0]
		for _, slot := range entry.Workouts {
			_, endMin, err := models.ParseTimeRange(slot.Time)
			if err == nil && endMin < nowMinutes {
				s.CancelJob(slot.ID)
				s.logger.Infof(providers.TypeNotify, "Expired slot %s (%s %s)", slot.ID, entry.Day, slot.Time)
				changed = true
				continue
			}
			kept = append(kept, slot)
		}
		out[i].Workouts = kept
	}

	if !changed {
		return schedules, false
	}
	return out, true
}
