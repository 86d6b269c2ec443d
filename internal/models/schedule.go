package models

import (
	"fmt"
	"strings"
	"time"
)

// WorkoutSlot is one scheduled exercise session within a weekday.
// Time holds a 24h range in the form "HH:mm - HH:mm".
type WorkoutSlot struct {
	ID                  string `json:"id"`
	Time                string `json:"time"`
	Name                string `json:"name"`
	Location            string `json:"location,omitempty"`
	ReminderEnabled     bool   `json:"reminder_enabled"`
	ReminderLeadMinutes int    `json:"reminder_lead_minutes"`
}

// ScheduleEntry is one weekday's slot list. Exactly seven entries exist per
// user, one per weekday; only the Workouts sequence is ever mutated.
type ScheduleEntry struct {
	Day      string        `json:"day"`
	Workouts []WorkoutSlot `json:"workouts"`
}

// ScheduleDoc is the document stored under schedules:<userId>.
type ScheduleDoc struct {
	Schedules []ScheduleEntry `json:"schedules"`
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// NewWeekSchedule returns the seven fixed entries, Monday first, all empty.
func NewWeekSchedule() []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, 7)
	for i := 1; i <= 7; i++ {
		entries = append(entries, ScheduleEntry{
			Day:      weekdayNames[i%7],
			Workouts: []WorkoutSlot{},
		})
	}
	return entries
}

// ParseWeekday maps a weekday name ("Monday") to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for i, n := range weekdayNames {
		if strings.EqualFold(n, name) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// ParseTimeRange splits a "HH:mm - HH:mm" range into start and end
// minutes-of-day.
func ParseTimeRange(r string) (startMin, endMin int, err error) {
	start, end, found := strings.Cut(r, " - ")
	if !found {
		return 0, 0, fmt.Errorf("malformed time range %q", r)
	}
	if startMin, err = ParseClock(start); err != nil {
		return 0, 0, err
	}
	if endMin, err = ParseClock(end); err != nil {
		return 0, 0, err
	}
	return startMin, endMin, nil
}

func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("malformed clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
