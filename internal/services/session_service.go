package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fitsyncd/internal/models"
	"fitsyncd/internal/notify"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/storage"
	"fitsyncd/internal/syncer"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrNotSignedIn indicates no active session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNeedsConnectivity indicates an operation that cannot degrade to
	// offline mode (registration, password change, first login).
	ErrNeedsConnectivity = errors.New("operation requires connectivity")
)

// SessionServiceInterface owns the single in-memory session: the current
// user and the live schedule, workout and settings collections. Exactly one
// instance is active per process; logout clears everything and cancels all
// pending reminders before the next login proceeds.
type SessionServiceInterface interface {
	Bootstrap(ctx context.Context) error
	Register(ctx context.Context, email, password, nickname string, height, weight float64) (*models.UserInfo, error)
	Login(ctx context.Context, email, password string) (*models.UserInfo, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	CurrentUser() (models.UserInfo, bool)
	Schedules() []models.ScheduleEntry
	SetSchedules(schedules []models.ScheduleEntry)
	Workouts() []models.WorkoutRecord
	SetWorkouts(workouts []models.WorkoutRecord)
	Settings() models.NotificationSettings
	SetSettings(settings models.NotificationSettings)
}

type SessionService struct {
	coordinator syncer.CoordinatorInterface
	local       storage.LocalCacheInterface
	remote      storage.RemoteStoreInterface
	monitor     providers.ConnectivityInterface
	scheduler   notify.SchedulerInterface
	clock       providers.Clock
	logger      providers.Logger

	mu        sync.RWMutex
	user      *models.UserInfo
	schedules []models.ScheduleEntry
	workouts  []models.WorkoutRecord
	settings  models.NotificationSettings
}

func NewSessionService(coordinator syncer.CoordinatorInterface, local storage.LocalCacheInterface, remote storage.RemoteStoreInterface, monitor providers.ConnectivityInterface, scheduler notify.SchedulerInterface, clock providers.Clock, logger providers.Logger) SessionServiceInterface {
	return &SessionService{
		coordinator: coordinator,
		local:       local,
		remote:      remote,
		monitor:     monitor,
		scheduler:   scheduler,
		clock:       clock,
		logger:      logger,
		settings:    models.DefaultNotificationSettings(),
	}
}

// Bootstrap restores a persisted session on startup. When connected it
// refreshes the user document from the remote store; offline it keeps the
// cached identity so the device comes up signed in.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	record, ok, err := s.local.Read(models.SessionKey)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Infof(providers.TypeApp, "No persisted session, starting signed out")
		return nil
	}

	var session models.SessionDoc
	if err := json.Unmarshal(record.Payload, &session); err != nil {
		s.logger.Warnf(providers.TypeApp, "Discarding unreadable session blob: %s", err)
		return s.local.Delete(models.SessionKey)
	}

	user := session.User
	if s.monitor.Current() {
		if payload, err := s.remote.GetDoc(ctx, models.UsersCollection, user.ID); err == nil {
			var fresh models.UserInfo
			if err := json.Unmarshal(payload, &fresh); err == nil {
				fresh.ID = user.ID
				user = fresh
				if err := s.persistSession(user); err != nil {
					return err
				}
			}
		} else {
			s.logger.Warnf(providers.TypeApp, "Could not refresh user %s from remote: %s", user.ID, err)
		}
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Infof(providers.TypeApp, "Restored session for %s", user.Email)
	return s.loadUserData(ctx, user.ID)
}

// Register creates a users document under a freshly generated id. It needs
// connectivity: the email uniqueness check has no offline answer.
func (s *SessionService) Register(ctx context.Context, email, password, nickname string, height, weight float64) (*models.UserInfo, error) {
	if !s.monitor.Current() {
		return nil, ErrNeedsConnectivity
	}

	docs, err := s.remote.QueryDocs(ctx, models.UsersCollection, "email", email)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.UserInfo{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Height:       height,
		Weight:       weight,
		CreatedAt:    s.clock.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(&user)
	if err != nil {
		return nil, err
	}
	if err := s.remote.SetDoc(ctx, models.UsersCollection, user.ID, payload); err != nil {
		return nil, err
	}

	s.logger.Infof(providers.TypeApp, "Registered user %s", user.ID)
	return &user, nil
}

// Login authenticates against the users collection, or against the cached
// session when the remote store is unreachable and the same account was
// signed in before.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.UserInfo, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.persistSession(*user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if err := s.loadUserData(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Infof(providers.TypeApp, "Signed in %s", user.Email)
	return user, nil
}

func (s *SessionService) lookupUser(ctx context.Context, email string) (*models.UserInfo, error) {
	if s.monitor.Current() {
		docs, err := s.remote.QueryDocs(ctx, models.UsersCollection, "email", email)
		if err == nil {
			if len(docs) == 0 {
				return nil, ErrInvalidCredentials
			}
			var user models.UserInfo
			if err := json.Unmarshal(docs[0].Data, &user); err != nil {
				return nil, fmt.Errorf("malformed user document: %w", err)
			}
			if user.ID == "" {
				user.ID = docs[0].ID
			}
			return &user, nil
		}
		s.logger.Warnf(providers.TypeApp, "Remote login unavailable, trying cached session: %s", err)
	}

	// offline: only the previously signed-in account can authenticate
	record, ok, err := s.local.Read(models.SessionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNeedsConnectivity
	}
	var session models.SessionDoc
	if err := json.Unmarshal(record.Payload, &session); err != nil {
		return nil, ErrNeedsConnectivity
	}
	if session.User.Email != email {
		return nil, ErrNeedsConnectivity
	}
	return &session.User, nil
}

// loadUserData pulls schedules, workouts and notification settings through
// the guarded read path, seeding first-run defaults, then rebuilds the
// reminder set once (cancel-then-schedule, never additive).
func (s *SessionService) loadUserData(ctx context.Context, userID string) error {
	schedules, err := s.loadSchedules(ctx, userID)
	if err != nil {
		return err
	}
	workouts, err := s.loadWorkouts(ctx, userID)
	if err != nil {
		return err
	}
	settings, err := s.loadSettings(ctx, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.schedules = schedules
	s.workouts = workouts
	s.settings = settings
	s.mu.Unlock()

	if settings.Enabled {
		s.scheduler.RescheduleAll(schedules)
	} else {
		s.scheduler.CancelAll()
	}
	return nil
}

func (s *SessionService) loadSchedules(ctx context.Context, userID string) ([]models.ScheduleEntry, error) {
	key := models.ScheduleKey(userID)
	payload, err := s.coordinator.GuardedRead(ctx, key, func(ctx context.Context) ([]byte, error) {
		return s.remote.GetDoc(ctx, models.SchedulesCollection, userID)
	})
	if errors.Is(err, syncer.ErrNotFound) {
		// first run: seed the fixed seven-day week
		doc := models.ScheduleDoc{Schedules: models.NewWeekSchedule()}
		seeded, merr := json.Marshal(&doc)
		if merr != nil {
			return nil, merr
		}
		if _, werr := s.coordinator.GuardedWrite(ctx, key, seeded, func(ctx context.Context, payload []byte) error {
			return s.remote.SetDoc(ctx, models.SchedulesCollection, userID, payload)
		}); werr != nil {
			return nil, werr
		}
		return doc.Schedules, nil
	}
	if err != nil {
		return nil, err
	}

	var doc models.ScheduleDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("malformed schedule document: %w", err)
	}
	return doc.Schedules, nil
}

func (s *SessionService) loadWorkouts(ctx context.Context, userID string) ([]models.WorkoutRecord, error) {
	payload, err := s.coordinator.GuardedRead(ctx, models.WorkoutsKey(userID), func(ctx context.Context) ([]byte, error) {
		return s.remote.GetDoc(ctx, models.WorkoutsCollection, userID)
	})
	if errors.Is(err, syncer.ErrNotFound) {
		return []models.WorkoutRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc models.WorkoutsDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("malformed workouts document: %w", err)
	}
	return doc.Workouts, nil
}

func (s *SessionService) loadSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	payload, err := s.coordinator.GuardedRead(ctx, models.NotificationSettingsKey(userID), func(ctx context.Context) ([]byte, error) {
		return s.remote.GetDoc(ctx, models.NotificationsCollection, userID)
	})
	if errors.Is(err, syncer.ErrNotFound) {
		return models.DefaultNotificationSettings(), nil
	}
	if err != nil {
		return models.NotificationSettings{}, err
	}

	var settings models.NotificationSettings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return models.NotificationSettings{}, fmt.Errorf("malformed settings document: %w", err)
	}
	return settings, nil
}

// Logout cancels every pending reminder and clears the session before the
// next login can proceed, so no trigger fires for a no-longer-active user.
func (s *SessionService) Logout(_ context.Context) error {
	s.scheduler.CancelAll()

	s.mu.Lock()
	s.user = nil
	s.schedules = nil
	s.workouts = nil
	s.settings = models.DefaultNotificationSettings()
	s.mu.Unlock()

	if err := s.local.Delete(models.SessionKey); err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Signed out")
	return nil
}

// ChangePassword verifies the old password and writes the updated user
// document. It needs connectivity: credentials must not fork between the
// device and the remote store.
func (s *SessionService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		return ErrNotSignedIn
	}
	if !s.monitor.Current() {
		return ErrNeedsConnectivity
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	updated := *user
	updated.PasswordHash = string(hash)

	payload, err := json.Marshal(&updated)
	if err != nil {
		return err
	}
	if err := s.remote.SetDoc(ctx, models.UsersCollection, updated.ID, payload); err != nil {
		return err
	}
	if err := s.persistSession(updated); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &updated
	s.mu.Unlock()
	return nil
}

func (s *SessionService) persistSession(user models.UserInfo) error {
	payload, err := json.Marshal(&models.SessionDoc{User: user})
	if err != nil {
		return err
	}
	return s.local.Write(models.SessionKey, payload)
}

func (s *SessionService) CurrentUser() (models.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.UserInfo{}, false
	}
	return *s.user, true
}

func (s *SessionService) Schedules() []models.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedules
}

func (s *SessionService) SetSchedules(schedules []models.ScheduleEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = schedules
}

func (s *SessionService) Workouts() []models.WorkoutRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workouts
}

func (s *SessionService) SetWorkouts(workouts []models.WorkoutRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts = workouts
}

func (s *SessionService) Settings() models.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *SessionService) SetSettings(settings models.NotificationSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
