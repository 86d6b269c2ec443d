package services

import (
	"context"
	"sync"

	"fitsyncd/internal/notify"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/structures"

	"github.com/roylee0704/gron"
)

type SweepServiceInterface interface {
	Init()
	Stop()
	SweepOnce(ctx context.Context)
}

// SweepService periodically removes schedule slots whose end time has passed
// today, so the schedule never shows already-finished sessions. The rewrite
// goes through the regular guarded save path and therefore works offline.
type SweepService struct {
	config    *structures.Config
	logger    providers.Logger
	session   SessionServiceInterface
	schedules ScheduleServiceInterface
	scheduler notify.SchedulerInterface
	clock     providers.Clock
	cron      *gron.Cron
	opsMu     sync.Mutex
}

func NewSweepService(config *structures.Config, logger providers.Logger, session SessionServiceInterface, schedules ScheduleServiceInterface, scheduler notify.SchedulerInterface, clock providers.Clock) SweepServiceInterface {
	return &SweepService{
		config:    config,
		logger:    logger,
		session:   session,
		schedules: schedules,
		scheduler: scheduler,
		clock:     clock,
	}
}

func (s *SweepService) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Sweep.Interval), func() {
		s.SweepOnce(context.Background())
	})

	s.cron.Start()
}

func (s *SweepService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// SweepOnce runs a single expiry pass. A no-op when signed out or when no
// slot has expired, so idle cycles never touch the store.
func (s *SweepService) SweepOnce(ctx context.Context) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if _, ok := s.session.CurrentUser(); !ok {
		return
	}

	swept, changed := s.scheduler.ExpireWorkoutSlots(s.session.Schedules(), s.clock.Now())
	if !changed {
		return
	}

	outcome, err := s.schedules.SaveSchedules(ctx, swept)
	if err != nil {
		s.logger.Errorf(providers.TypeNotify, "Error while persisting swept schedule: %s", err)
		return
	}
	s.logger.Infof(providers.TypeNotify, "Swept expired slots (%s)", outcome)
}
