package services

import (
	"context"
	"testing"
	"time"

	"fitsyncd/internal/models"
	"fitsyncd/internal/notify"
	"fitsyncd/internal/storage"
	"fitsyncd/internal/syncer"
	"fitsyncd/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type serviceFixture struct {
	session     SessionServiceInterface
	coordinator syncer.CoordinatorInterface
	scheduler   notify.SchedulerInterface
	local       *testutil.MockLocalCache
	remote      *testutil.MockRemoteStore
	monitor     *testutil.MockConnectivity
	notifier    *testutil.MockNotifier
	clock       *testutil.MockClock
}

func newServiceFixture(t *testing.T, connected bool) *serviceFixture {
	t.Helper()
	local := testutil.NewMockLocalCache()
	remote := testutil.NewMockRemoteStore()
	monitor := testutil.NewMockConnectivity(connected)
	notifier := testutil.NewMockNotifier()
	metrics := &testutil.MockMetrics{}
	clock := testutil.NewMockClock(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	logger := &testutil.MockLogger{}

	queue, err := syncer.NewSyncQueue(local, clock, metrics, logger)
	require.NoError(t, err)
	coordinator := syncer.NewCoordinator(local, remote, queue, monitor, metrics, logger)
	scheduler := notify.NewScheduler(notifier, clock, logger)

	return &serviceFixture{
		session:     NewSessionService(coordinator, local, remote, monitor, scheduler, clock, logger),
		coordinator: coordinator,
		scheduler:   scheduler,
		local:       local,
		remote:      remote,
		monitor:     monitor,
		notifier:    notifier,
		clock:       clock,
	}
}

// seedUser registers a user document and the matching email query result.
func (f *serviceFixture) seedUser(t *testing.T, id, email, password string) models.UserInfo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.UserInfo{ID: id, Email: email, PasswordHash: string(hash), Nickname: "tester"}
	payload, err := json.Marshal(&user)
	require.NoError(t, err)

	f.remote.Docs[models.UsersCollection+"/"+id] = payload
	f.remote.PutQueryResult(models.UsersCollection, "email", email, storage.Document{ID: id, Data: payload})
	return user
}

func TestLoginLoadsAndSeedsUserData(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")

	user, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	current, ok := f.session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "a@b.c", current.Email)

	// first run seeds the fixed week and default settings
	require.Len(t, f.session.Schedules(), 7)
	assert.Equal(t, "Monday", f.session.Schedules()[0].Day)
	assert.Empty(t, f.session.Workouts())
	assert.True(t, f.session.Settings().Enabled)

	// seeded schedule reached the remote store
	assert.Contains(t, f.remote.Docs, "schedules/u1")

	// session persisted locally for offline restart
	_, ok, err = f.local.Read(models.SessionKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")

	_, err := f.session.Login(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, ok := f.session.CurrentUser()
	assert.False(t, ok)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	f := newServiceFixture(t, true)

	_, err := f.session.Login(context.Background(), "ghost@b.c", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginOfflineUsesCachedSession(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")

	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	require.NoError(t, f.session.Logout(context.Background()))

	// logout wipes the session, sign in again while still online to recreate it
	_, err = f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	f.monitor.SetConnected(false)
	user, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestLoginOfflineWithoutCachedSessionFails(t *testing.T) {
	f := newServiceFixture(t, false)

	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	assert.ErrorIs(t, err, ErrNeedsConnectivity)
}

func TestLogoutCancelsRemindersAndClearsSession(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")

	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	require.NoError(t, f.notifier.ScheduleAt("slot-1", f.clock.Now().Add(time.Hour), "", ""))

	require.NoError(t, f.session.Logout(context.Background()))

	assert.Equal(t, 0, f.notifier.Pending())
	_, ok := f.session.CurrentUser()
	assert.False(t, ok)

	_, ok, err = f.local.Read(models.SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterCreatesUser(t *testing.T) {
	f := newServiceFixture(t, true)

	user, err := f.session.Register(context.Background(), "new@b.c", "secret", "nick", 180, 75)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Contains(t, f.remote.Docs, models.UsersCollection+"/"+user.ID)

	// password is stored hashed, never in the clear
	assert.NotContains(t, string(f.remote.Docs[models.UsersCollection+"/"+user.ID]), "secret")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")

	_, err := f.session.Register(context.Background(), "a@b.c", "other", "nick", 0, 0)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRequiresConnectivity(t *testing.T) {
	f := newServiceFixture(t, false)

	_, err := f.session.Register(context.Background(), "a@b.c", "secret", "nick", 0, 0)
	assert.ErrorIs(t, err, ErrNeedsConnectivity)
}

func TestBootstrapRestoresSessionOffline(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")
	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	// a fresh process over the same local store, now offline
	restarted := newServiceFixture(t, false)
	restarted.local = f.local
	restarted.session = NewSessionService(
		syncer.NewCoordinator(f.local, restarted.remote, mustQueue(t, f.local, restarted.clock), restarted.monitor, &testutil.MockMetrics{}, &testutil.MockLogger{}),
		f.local, restarted.remote, restarted.monitor,
		notify.NewScheduler(restarted.notifier, restarted.clock, &testutil.MockLogger{}),
		restarted.clock, &testutil.MockLogger{},
	)

	require.NoError(t, restarted.session.Bootstrap(context.Background()))

	user, ok := restarted.session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Len(t, restarted.session.Schedules(), 7)
}

func TestBootstrapWithoutSessionStaysSignedOut(t *testing.T) {
	f := newServiceFixture(t, false)

	require.NoError(t, f.session.Bootstrap(context.Background()))
	_, ok := f.session.CurrentUser()
	assert.False(t, ok)
}

func TestChangePassword(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")
	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	require.NoError(t, f.session.ChangePassword(context.Background(), "secret", "newsecret"))

	var stored models.UserInfo
	require.NoError(t, json.Unmarshal(f.remote.Docs[models.UsersCollection+"/u1"], &stored))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret")))
}

func TestChangePasswordRejectsWrongOldPassword(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")
	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	err = f.session.ChangePassword(context.Background(), "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordRequiresConnectivity(t *testing.T) {
	f := newServiceFixture(t, true)
	f.seedUser(t, "u1", "a@b.c", "secret")
	_, err := f.session.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	f.monitor.SetConnected(false)
	err = f.session.ChangePassword(context.Background(), "secret", "newsecret")
	assert.ErrorIs(t, err, ErrNeedsConnectivity)
}

func TestChangePasswordRequiresSession(t *testing.T) {
	f := newServiceFixture(t, true)
	err := f.session.ChangePassword(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func mustQueue(t *testing.T, local *testutil.MockLocalCache, clock *testutil.MockClock) syncer.QueueInterface {
	t.Helper()
	queue, err := syncer.NewSyncQueue(local, clock, &testutil.MockMetrics{}, &testutil.MockLogger{})
	require.NoError(t, err)
	return queue
}
