package timescheduler

import (
	"fmt"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/go-co-op/gocron"
)

type service struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	// a slow run is never overlapped by the next tick
	svc.SingletonModeAll()
	return &service{svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

func (s *service) ScheduleEvery(interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	if _, err := s.scheduler.Every(interval).Do(task); err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}
	return nil
}
