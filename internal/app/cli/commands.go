package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"paycore/internal/domain/audit"
	"paycore/internal/domain/payroll"
	"paycore/internal/platform/jobs"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations and seed reference data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			cfg.RunMigrations = false
			pool, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrate(cmd.Context(), pool, cfg)
			out := cmd.OutOrStdout()
			for _, version := range applied {
				fmt.Fprintln(out, "applied", version)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema up to date")
			}
			return nil
		},
	}
}

func newComputeCommand(opts *rootOptions) *cobra.Command {
	var (
		employeeID  string
		periodID    string
		regime      string
		workingDays int
		presentDays int
		persist     bool
		pdfDir      string
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute one payslip and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.checkID("employee", employeeID); err != nil {
				return err
			}
			if err := opts.checkID("period", periodID); err != nil {
				return err
			}
			if cmd.Flags().Changed("present-days") && !cmd.Flags().Changed("working-days") {
				return errors.New("--present-days requires --working-days")
			}

			ctx := cmd.Context()
			app, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			computeOpts := payroll.ComputeOptions{Regime: regime}
			if cmd.Flags().Changed("working-days") {
				attendance := &payroll.Attendance{WorkingDays: workingDays}
				if cmd.Flags().Changed("present-days") {
					attendance.PresentDays = &presentDays
				}
				computeOpts.Attendance = attendance
			}

			payslip, err := app.Service.ComputePayslip(ctx, employeeID, periodID, computeOpts)
			if err != nil {
				return err
			}
			if persist {
				if payslip, err = app.Service.PersistPayslip(ctx, payslip); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("pdf") {
				path, err := app.Service.GeneratePayslipPDF(ctx, payslip, pdfDir)
				if err != nil {
					return fmt.Errorf("render payslip pdf: %w", err)
				}
				app.Logger.Info("payslip pdf written", "path", path)
			}
			return writeJSON(cmd.OutOrStdout(), payslip)
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee ID")
	cmd.Flags().StringVar(&periodID, "period", "", "payroll period ID")
	cmd.Flags().StringVar(&regime, "regime", "", "tax regime (defaults to the employee's, then DEFAULT_TAX_REGIME)")
	cmd.Flags().IntVar(&workingDays, "working-days", 0, "working days in the period")
	cmd.Flags().IntVar(&presentDays, "present-days", 0, "days present (defaults to working days)")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the payslip")
	cmd.Flags().StringVar(&pdfDir, "pdf", "", "also render a PDF into this directory (PAYSLIP_DIR when empty)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		periodID string
		runBy    string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run payroll for every active employee in a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.checkID("period", periodID); err != nil {
				return err
			}
			ctx := cmd.Context()
			app, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			summary, runErr := app.Service.RunPayrollForPeriod(ctx, periodID, runBy)
			if summary.RunID != "" {
				if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&periodID, "period", "", "payroll period ID")
	cmd.Flags().StringVar(&runBy, "run-by", "cli", "who started the run")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var employeeID string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report circular references and invalid formulas in the salary catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if employeeID != "" {
				if err := opts.checkID("employee", employeeID); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			app, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			issues, err := app.Service.ValidateEmployeeCatalog(ctx, employeeID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintln(out, "catalog OK")
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintln(out, issue.String())
			}
			return fmt.Errorf("%d catalog issue(s)", len(issues))
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "apply this employee's overrides")
	return cmd
}

func newWorkerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run payroll for due periods on SCHEDULE_INTERVAL until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.ScheduleInterval <= 0 {
				return errors.New("SCHEDULE_INTERVAL must be positive to run the worker")
			}
			ctx := cmd.Context()
			app, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			scheduler := jobs.New(app.Service, opts.cfg.ScheduleInterval, app.Logger)
			scheduler.Start(ctx)
			if added, err := scheduler.ScheduleDue(ctx); err != nil {
				app.Logger.Warn("initial due period lookup failed", "err", err)
			} else {
				app.Logger.Info("worker started", "interval", opts.cfg.ScheduleInterval.String(), "queued", added)
			}
			<-ctx.Done()
			app.Logger.Info("worker stopping", "metrics", app.Service.Metrics().Snapshot())
			return nil
		},
	}
}

func newAuditCommand(opts *rootOptions) *cobra.Command {
	var (
		filter audit.Filter
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List audit events, newest first, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			ctx := cmd.Context()
			app, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			events, err := app.Audit.List(ctx, filter, limit)
			if err != nil {
				return fmt.Errorf("list audit events: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().StringVar(&filter.Action, "action", "", "only events with this action, e.g. "+audit.ActionRunFinished)
	cmd.Flags().StringVar(&filter.EntityType, "entity", "", "only events for this entity type, e.g. "+audit.EntityPayrollRun)
	cmd.Flags().StringVar(&filter.Actor, "actor", "", "only events by this actor")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events")
	return cmd
}
