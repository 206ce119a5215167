package payroll

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"paycore/internal/domain/audit"
	"paycore/internal/platform/lock"
)

type employeeOutcome struct {
	done bool
	err  error
}

// RunPayrollForPeriod computes and persists a payslip for every active
// employee. A failing employee is recorded in the summary and never stops the
// batch. Cancelling ctx stops new employees from being scheduled; those
// already dispatched finish and the run is marked FAILED.
func (s *Service) RunPayrollForPeriod(ctx context.Context, periodID, runBy string) (RunSummary, error) {
	if _, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (PayrollPeriod, error) {
		return s.store.GetPayrollPeriod(ctx, periodID)
	}); err != nil {
		return RunSummary{}, fmt.Errorf("get payroll period %s: %w", periodID, err)
	}

	release, err := s.locker.Acquire(ctx, "payroll-run:"+periodID, s.settings.RunLockTTL)
	if errors.Is(err, lock.ErrHeld) {
		return RunSummary{}, fmt.Errorf("period %s: %w", periodID, ErrRunInProgress)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("run lock release failed", "periodId", periodID, "err", err)
		}
	}()

	run, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (Run, error) {
		return s.store.CreatePayrollRun(ctx, periodID, runBy)
	})
	if err != nil {
		return RunSummary{}, fmt.Errorf("create payroll run: %w", err)
	}
	summary := RunSummary{RunID: run.ID, PeriodID: periodID, Status: RunStatusInProgress, Errors: []RunError{}}
	s.logger.Info("payroll run started", "runId", run.ID, "periodId", periodID, "runBy", runBy)

	ids, err := call(ctx, s.settings.StoreTimeout, s.store.ListActiveEmployeeIDs)
	if err != nil {
		summary.Status = RunStatusFailed
		s.finishRun(ctx, runBy, &summary)
		return summary, fmt.Errorf("list active employees: %w", err)
	}

	outcomes := make([]employeeOutcome, len(ids))
	var g errgroup.Group
	g.SetLimit(s.settings.Workers)
	for i, employeeID := range ids {
		i, employeeID := i, employeeID
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// a slot may free up only after the run was aborted
			if ctx.Err() != nil {
				return nil
			}
			workCtx := context.WithoutCancel(ctx)
			payslip, err := s.ComputePayslip(workCtx, employeeID, periodID, ComputeOptions{})
			if err == nil {
				_, err = s.PersistPayslip(workCtx, payslip)
			}
			outcomes[i] = employeeOutcome{done: true, err: err}
			return nil
		})
	}
	_ = g.Wait()

	summary.Total = len(ids)
	for i, outcome := range outcomes {
		switch {
		case !outcome.done:
			summary.Skipped++
		case outcome.err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, RunError{EmployeeID: ids[i], Error: outcome.err.Error()})
			s.logger.Warn("payslip failed", "runId", run.ID, "employeeId", ids[i], "err", outcome.err)
		default:
			summary.Succeeded++
		}
	}

	aborted := ctx.Err()
	summary.Status = RunStatusCompleted
	if aborted != nil {
		summary.Status = RunStatusFailed
	}
	s.finishRun(ctx, runBy, &summary)
	if aborted != nil {
		return summary, fmt.Errorf("payroll run %s aborted: %w", run.ID, aborted)
	}
	return summary, nil
}

func (s *Service) finishRun(ctx context.Context, runBy string, summary *RunSummary) {
	ctx = context.WithoutCancel(ctx)
	if _, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.UpdateRunStatus(ctx, summary.RunID, summary.Status, summary)
	}); err != nil {
		s.logger.Warn("run status update failed", "runId", summary.RunID, "status", summary.Status, "err", err)
	}
	if s.audit != nil {
		if _, err := call(ctx, s.settings.StoreTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.audit.Record(ctx, runBy, audit.ActionRunFinished, audit.EntityPayrollRun, summary.RunID, summary)
		}); err != nil {
			s.logger.Warn("run audit record failed", "runId", summary.RunID, "err", err)
		}
	}
	s.metrics.RecordRun(summary.Status == RunStatusCompleted)
	s.logger.Info("payroll run finished",
		"runId", summary.RunID,
		"periodId", summary.PeriodID,
		"status", summary.Status,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"metrics", s.metrics.Snapshot(),
	)
}
