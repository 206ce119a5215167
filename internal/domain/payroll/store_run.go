package payroll

import (
	"context"
	"encoding/json"
)

func (s *Store) CreatePayrollRun(ctx context.Context, periodID, runBy string) (Run, error) {
	run := Run{PeriodID: periodID, RunBy: runBy, Status: RunStatusInProgress}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_runs (payroll_period_id, run_by, status)
    VALUES ($1, $2, $3)
    RETURNING id::text, started_at
  `, periodID, runBy, RunStatusInProgress).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return Run{}, notFound(err, ErrPeriodNotFound)
	}
	return run, nil
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string, summary *RunSummary) error {
	var summaryJSON []byte
	if summary != nil {
		var err error
		if summaryJSON, err = json.Marshal(summary); err != nil {
			return err
		}
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_runs
    SET status = $1,
        summary = COALESCE($2::jsonb, summary),
        completed_at = CASE WHEN $1 = 'IN_PROGRESS' THEN NULL ELSE now() END
    WHERE id = $3
  `, status, nullableJSON(summaryJSON), runID)
	if err != nil {
		return notFound(err, ErrRunNotFound)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
