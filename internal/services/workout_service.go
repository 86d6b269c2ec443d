package services

import (
	"context"
	"errors"
	"time"

	"fitsyncd/internal/models"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/storage"
	"fitsyncd/internal/syncer"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// NewWorkoutRecord carries the user-supplied fields for a completed workout;
// id and date are assigned here.
type NewWorkoutRecord struct {
	Duration int                   `json:"duration"` // minutes
	Metrics  models.WorkoutMetrics `json:"metrics"`
	Notes    string                `json:"notes"`
	Media    []string              `json:"media"`
}

type WorkoutServiceInterface interface {
	List() []models.WorkoutRecord
	AddRecord(ctx context.Context, input NewWorkoutRecord) (*models.WorkoutRecord, syncer.Outcome, error)
}

// WorkoutService maintains the newest-first workout history for the signed-in
// user. Records are immutable once added; the whole document is rewritten
// through the guarded write path.
type WorkoutService struct {
	session     SessionServiceInterface
	coordinator syncer.CoordinatorInterface
	remote      storage.RemoteStoreInterface
	clock       providers.Clock
}

func NewWorkoutService(session SessionServiceInterface, coordinator syncer.CoordinatorInterface, remote storage.RemoteStoreInterface, clock providers.Clock) WorkoutServiceInterface {
	return &WorkoutService{
		session:     session,
		coordinator: coordinator,
		remote:      remote,
		clock:       clock,
	}
}

func (s *WorkoutService) List() []models.WorkoutRecord {
	return s.session.Workouts()
}

// AddRecord prepends a new record so the history stays newest-first and
// persists the full document.
func (s *WorkoutService) AddRecord(ctx context.Context, input NewWorkoutRecord) (*models.WorkoutRecord, syncer.Outcome, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return nil, syncer.OutcomeSavedOffline, ErrNotSignedIn
	}
	if err := validateRecord(input); err != nil {
		return nil, syncer.OutcomeSavedOffline, err
	}

	record := models.WorkoutRecord{
		ID:       uuid.NewString(),
		Date:     s.clock.Now().UTC().Format(time.RFC3339),
		Duration: input.Duration,
		Metrics:  input.Metrics,
		Notes:    input.Notes,
		Media:    input.Media,
	}

	existing := s.session.Workouts()
	workouts := make([]models.WorkoutRecord, 0, len(existing)+1)
	workouts = append(workouts, record)
	workouts = append(workouts, existing...)

	payload, err := json.Marshal(&models.WorkoutsDoc{Workouts: workouts})
	if err != nil {
		return nil, syncer.OutcomeSavedOffline, err
	}

	outcome, err := s.coordinator.GuardedWrite(ctx, models.WorkoutsKey(user.ID), payload, func(ctx context.Context, payload []byte) error {
		return s.remote.SetDoc(ctx, models.WorkoutsCollection, user.ID, payload)
	})
	if err != nil {
		return nil, outcome, err
	}

	s.session.SetWorkouts(workouts)
	return &record, outcome, nil
}

func validateRecord(input NewWorkoutRecord) error {
	switch {
	case input.Duration <= 0:
		return errors.New("workout duration must be positive")
	case input.Notes == "":
		return errors.New("workout notes are required")
	case input.Metrics.WeightBefore <= 0 || input.Metrics.WeightAfter <= 0:
		return errors.New("weight measurements must be positive")
	case input.Metrics.HeartRateBefore <= 0 || input.Metrics.HeartRateAfter <= 0:
		return errors.New("heart rate measurements must be positive")
	}
	return nil
}
