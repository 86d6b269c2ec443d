package services

import (
	"context"

	"fitsyncd/internal/models"
	"fitsyncd/internal/notify"
	"fitsyncd/internal/storage"
	"fitsyncd/internal/syncer"

	json "github.com/goccy/go-json"
)

type SettingsServiceInterface interface {
	Get() models.NotificationSettings
	Update(ctx context.Context, enabled bool) (syncer.Outcome, error)
}

// SettingsService owns the notification master switch. Turning it off cancels
// every pending trigger; turning it on rebuilds the whole reminder set from
// the current schedule.
type SettingsService struct {
	session     SessionServiceInterface
	coordinator syncer.CoordinatorInterface
	remote      storage.RemoteStoreInterface
	scheduler   notify.SchedulerInterface
}

func NewSettingsService(session SessionServiceInterface, coordinator syncer.CoordinatorInterface, remote storage.RemoteStoreInterface, scheduler notify.SchedulerInterface) SettingsServiceInterface {
	return &SettingsService{
		session:     session,
		coordinator: coordinator,
		remote:      remote,
		scheduler:   scheduler,
	}
}

func (s *SettingsService) Get() models.NotificationSettings {
	return s.session.Settings()
}

func (s *SettingsService) Update(ctx context.Context, enabled bool) (syncer.Outcome, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return syncer.OutcomeSavedOffline, ErrNotSignedIn
	}

	settings := models.NotificationSettings{Enabled: enabled}
	payload, err := json.Marshal(&settings)
	if err != nil {
		return syncer.OutcomeSavedOffline, err
	}

	outcome, err := s.coordinator.GuardedWrite(ctx, models.NotificationSettingsKey(user.ID), payload, func(ctx context.Context, payload []byte) error {
		return s.remote.SetDoc(ctx, models.NotificationsCollection, user.ID, payload)
	})
	if err != nil {
		return outcome, err
	}

	s.session.SetSettings(settings)
	if enabled {
		s.scheduler.RescheduleAll(s.session.Schedules())
	} else {
		s.scheduler.CancelAll()
	}
	return outcome, nil
}
