package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"paycore/internal/domain/payroll"
)

const (
	JobScheduledRun = "payroll_scheduled_run"
	ScheduledRunBy  = "scheduler"
)

// Runner is the part of the payroll service the scheduler drives.
type Runner interface {
	DuePeriods(ctx context.Context) ([]payroll.PayrollPeriod, error)
	RunPayrollForPeriod(ctx context.Context, periodID, runBy string) (payroll.RunSummary, error)
}

type Service struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
	queue    chan job

	mu      sync.Mutex
	pending map[string]bool
}

type job struct {
	Type     string
	PeriodID string
	Run      func(context.Context) (any, error)
}

func New(runner Runner, interval time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runner:   runner,
		interval: interval,
		logger:   logger,
		queue:    make(chan job, 128),
		pending:  map[string]bool{},
	}
}

// Start runs the worker and, when an interval is set, the due-period scheduler.
// Both stop when ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.interval > 0 {
		go s.schedule(ctx, s.interval)
	}
}

// Enqueue queues a job for the worker. It reports false when the queue is full.
func (s *Service) Enqueue(jobType, periodID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, PeriodID: periodID, Run: run}:
		return true
	default:
		s.logger.Warn("job queue full", "jobType", jobType, "periodId", periodID)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, periodID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, PeriodID: periodID, Run: run})
}

// ScheduleDue enqueues a run for every due period not already queued and
// returns how many were added.
func (s *Service) ScheduleDue(ctx context.Context) (int, error) {
	periods, err := s.runner.DuePeriods(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, period := range periods {
		periodID := period.ID
		if !s.markPending(periodID) {
			continue
		}
		ok := s.Enqueue(JobScheduledRun, periodID, func(ctx context.Context) (any, error) {
			return s.runner.RunPayrollForPeriod(ctx, periodID, ScheduledRunBy)
		})
		if !ok {
			s.clearPending(periodID)
			continue
		}
		added++
	}
	return added, nil
}

func (s *Service) markPending(periodID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[periodID] {
		return false
	}
	s.pending[periodID] = true
	return true
}

func (s *Service) clearPending(periodID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, periodID)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.logger.Warn("job run failed", "jobType", j.Type, "periodId", j.PeriodID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	defer s.clearPending(j.PeriodID)
	started := time.Now()
	s.logger.Info("job started", "jobType", j.Type, "periodId", j.PeriodID)

	details, err := j.Run(ctx)
	status := "completed"
	switch {
	case errors.Is(err, payroll.ErrRunInProgress):
		// another instance owns this period
		status = "skipped"
		err = nil
	case err != nil:
		status = "failed"
	}
	s.logger.Info("job finished",
		"jobType", j.Type,
		"periodId", j.PeriodID,
		"status", status,
		"durationMs", time.Since(started).Milliseconds(),
	)
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ScheduleDue(ctx); err != nil {
				s.logger.Warn("scheduler due period lookup failed", "err", err)
			}
		}
	}
}
