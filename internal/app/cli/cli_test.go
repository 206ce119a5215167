package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycore/internal/app/cli"
)

const acme = "../../fixture/testdata/acme.yaml"

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "DATA_ENCRYPTION_KEY", "REDIS_URL", "SCHEDULE_INTERVAL", "EXCLUDE_MONTHLY_CTC"} {
		t.Setenv(key, "")
	}
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(ctx context.Context, args ...string) (string, error) {
	cmd := cli.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestComputeCommand(t *testing.T) {
	isolateEnv(t)
	out, err := execute(context.Background(), "compute", "--fixture", acme, "--employee", "E1", "--period", "2025-01")
	require.NoError(t, err)

	payslip := decode(t, out)
	assert.Equal(t, json.Number("200200.00"), payslip["gross_salary"])
	assert.Equal(t, json.Number("151806.67"), payslip["net_salary"])
	assert.Equal(t, "new", payslip["regime"])
	breakdown, ok := payslip["breakdown"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, breakdown, "BONUS_B1")
	assert.Contains(t, breakdown, "INCOME_TAX")
}

func TestComputeCommandExcludeMonthlyCTC(t *testing.T) {
	isolateEnv(t)
	t.Setenv("EXCLUDE_MONTHLY_CTC", "true")
	out, err := execute(context.Background(), "compute", "--fixture", acme, "--employee", "E1", "--period", "2025-01")
	require.NoError(t, err)

	payslip := decode(t, out)
	assert.Equal(t, json.Number("100200.00"), payslip["gross_salary"])
	assert.Equal(t, json.Number("81806.67"), payslip["net_salary"])
}

func TestComputeCommandAttendanceFlags(t *testing.T) {
	isolateEnv(t)
	out, err := execute(context.Background(), "compute", "--fixture", acme,
		"--employee", "E1", "--period", "2025-01", "--working-days", "20", "--present-days", "10")
	require.NoError(t, err)
	assert.Equal(t, json.Number("100100.00"), decode(t, out)["gross_salary"])

	_, err = execute(context.Background(), "compute", "--fixture", acme,
		"--employee", "E1", "--period", "2025-01", "--present-days", "10")
	assert.EqualError(t, err, "--present-days requires --working-days")
}

func TestComputeCommandWritesPDF(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	_, err := execute(context.Background(), "compute", "--fixture", acme,
		"--employee", "E2", "--period", "2025-01", "--pdf", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "E2_2025-01.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestComputeCommandErrors(t *testing.T) {
	isolateEnv(t)

	_, err := execute(context.Background(), "compute", "--fixture", acme, "--employee", "nobody", "--period", "2025-01")
	assert.ErrorContains(t, err, "employee not found")

	_, err = execute(context.Background(), "compute", "--employee", "E1", "--period", "2025-01")
	assert.ErrorContains(t, err, "is not a UUID")

	_, err = execute(context.Background(), "compute",
		"--employee", "7d0c5a4e-2f51-4a39-9d7e-0f7f4b9a1c11", "--period", "3b1c4d5e-6f70-4812-9a3b-4c5d6e7f8091")
	assert.EqualError(t, err, "DATABASE_URL is required")

	_, err = execute(context.Background(), "compute", "--fixture", acme, "--period", "2025-01")
	assert.ErrorContains(t, err, "employee")
}

func TestRunCommand(t *testing.T) {
	isolateEnv(t)
	out, err := execute(context.Background(), "run", "--fixture", acme, "--period", "2025-01", "--run-by", "hr@acme")
	require.NoError(t, err)

	summary := decode(t, out)
	assert.Equal(t, "COMPLETED", summary["status"])
	assert.Equal(t, json.Number("2"), summary["total"])
	assert.Equal(t, json.Number("2"), summary["succeeded"])
	assert.NotEmpty(t, summary["run_id"])
}

func TestValidateCommand(t *testing.T) {
	isolateEnv(t)
	out, err := execute(context.Background(), "validate", "--fixture", acme)
	require.NoError(t, err)
	assert.Equal(t, "catalog OK\n", out)

	out, err = execute(context.Background(), "validate", "--fixture", acme, "--employee", "E2")
	require.NoError(t, err)
	assert.Equal(t, "catalog OK\n", out)
}

func TestWorkerCommand(t *testing.T) {
	isolateEnv(t)
	_, err := execute(context.Background(), "worker", "--fixture", acme)
	assert.ErrorContains(t, err, "SCHEDULE_INTERVAL")

	t.Setenv("SCHEDULE_INTERVAL", "20ms")
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = execute(ctx, "worker", "--fixture", acme)
	assert.NoError(t, err)
}

func TestAuditCommand(t *testing.T) {
	isolateEnv(t)
	out, err := execute(context.Background(), "audit", "--fixture", acme, "--action", "payroll.run.finished", "--actor", "hr@acme")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = execute(context.Background(), "audit", "--fixture", acme, "--limit", "0")
	assert.EqualError(t, err, "--limit must be positive")

	_, err = execute(context.Background(), "audit")
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestMigrateRequiresDatabase(t *testing.T) {
	isolateEnv(t)
	_, err := execute(context.Background(), "migrate")
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestInvalidConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PAYROLL_WORKERS", "0")
	_, err := execute(context.Background(), "validate", "--fixture", acme)
	assert.ErrorContains(t, err, "PAYROLL_WORKERS")
}
