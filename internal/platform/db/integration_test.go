package db_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycore/internal/domain/audit"
	"paycore/internal/domain/payroll"
	"paycore/internal/platform/config"
	cryptoutil "paycore/internal/platform/crypto"
	"paycore/internal/platform/db"
	"paycore/internal/platform/retry"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL, Workers: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = db.Migrate(ctx, pool, "../../../migrations")
	require.NoError(t, err)
	applied, err := db.Migrate(ctx, pool, "../../../migrations")
	require.NoError(t, err)
	assert.Empty(t, applied)
	_, err = pool.Exec(ctx, `TRUNCATE employees, employee_grades, salary_components, payroll_periods, professional_tax_rules, tax_regimes, audit_events CASCADE`)
	require.NoError(t, err)
	require.NoError(t, db.Seed(ctx, pool))
	require.NoError(t, db.Seed(ctx, pool))
	return pool
}

type seeded struct {
	employeeID string
	periodID   string
}

func seedPayroll(t *testing.T, pool *pgxpool.Pool, cipher *cryptoutil.Cipher) seeded {
	t.Helper()
	ctx := context.Background()
	var out seeded

	require.NoError(t, pool.QueryRow(ctx, `
    INSERT INTO employees (name, work_region) VALUES ('Asha Rao', 'MH') RETURNING id::text
  `).Scan(&out.employeeID))
	sealed, err := cipher.EncryptAmount(decimal.NewFromInt(1200000))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
    INSERT INTO employee_salary_assignments (employee_id, custom_annual_ctc_enc, effective_from)
    VALUES ($1, $2, '2024-04-01')
  `, out.employeeID, sealed)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
    INSERT INTO salary_components (code, name, type, is_taxable, calc_method, calc_value, base_component_code, ordering) VALUES
      ('BASIC', 'Basic Salary', 'EARNING', true, 'PERCENT_OF', '40', 'MONTHLY_CTC', 10),
      ('HRA', 'House Rent Allowance', 'EARNING', true, 'PERCENT_OF', '50', 'BASIC', 20),
      ('SPECIAL', 'Special Allowance', 'EARNING', true, 'FORMULA', 'MONTHLY_CTC - BASIC - HRA - PF_EMPLOYER', NULL, 30),
      ('PF_EMPLOYEE', 'Provident Fund', 'DEDUCTION', false, 'FORMULA', 'BASIC * 12 / 100', NULL, 40),
      ('PF_EMPLOYER', 'Employer Provident Fund', 'EMPLOYER_CONTRIBUTION', false, 'FORMULA', 'BASIC * 0.12', NULL, 50)
  `)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
    INSERT INTO professional_tax_rules (region, min_monthly_salary, max_monthly_salary, monthly_amount) VALUES
      ('MH', 0, 7500, 0), ('MH', 7501, 10000, 175), ('MH', 10001, NULL, 200)
  `)
	require.NoError(t, err)

	require.NoError(t, pool.QueryRow(ctx, `
    INSERT INTO payroll_periods (period_start, period_end) VALUES ('2025-01-01', '2025-01-31') RETURNING id::text
  `).Scan(&out.periodID))
	return out
}

func TestPostgresStoreEndToEnd(t *testing.T) {
	pool := openTestDB(t)
	cipher, err := cryptoutil.New(testKey)
	require.NoError(t, err)
	ids := seedPayroll(t, pool, cipher)

	store := payroll.NewRetryingStore(payroll.NewStore(pool, cipher), retry.Policy{MaxRetries: 2, Base: 10 * time.Millisecond})
	trail := audit.New(pool)
	svc := payroll.NewService(payroll.Dependencies{
		Store:  store,
		Audit:  trail,
		Crypto: cipher,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC) },
	}, payroll.Settings{})
	ctx := context.Background()

	p, err := svc.ComputePayslip(ctx, ids.employeeID, ids.periodID, payroll.ComputeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "195200.00", p.GrossSalary.StringFixed(2))
	assert.Equal(t, "28800.00", p.TotalDeductions.StringFixed(2))
	assert.Equal(t, "166400.00", p.NetSalary.StringFixed(2))
	assert.Equal(t, "200000.00", p.TotalEmployerCost.StringFixed(2))

	due, err := svc.DuePeriods(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)

	summary, err := svc.RunPayrollForPeriod(ctx, ids.periodID, "integration")
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusCompleted, summary.Status)
	assert.Equal(t, 1, summary.Succeeded)

	_, err = svc.RunPayrollForPeriod(ctx, ids.periodID, "integration")
	require.NoError(t, err)
	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM payslips WHERE payroll_period_id = $1`, ids.periodID).Scan(&count))
	assert.Equal(t, 1, count)

	due, err = svc.DuePeriods(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	events, err := trail.List(ctx, audit.Filter{Action: audit.ActionRunFinished, Actor: "integration"}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, audit.EntityPayrollRun, events[0].EntityType)

	_, err = svc.ComputePayslip(ctx, "not-a-uuid", ids.periodID, payroll.ComputeOptions{})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	_, err = pool.Exec(ctx, `
    INSERT INTO salary_components (code, name, type, calc_method, calc_value) VALUES ('LTA', 'Leave Travel', 'EARNING', 'FIXED', '1000')
  `)
	require.NoError(t, err)
	catalog, err := store.GetSalaryCatalog(ctx)
	require.NoError(t, err)
	lta := catalog[len(catalog)-1]
	assert.Equal(t, "LTA", lta.Code)
	assert.True(t, lta.IsTaxable)
	assert.Equal(t, payroll.DefaultComponentOrdering, lta.Ordering)
}
