// Package cli wires the payroll service into the payroll command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"paycore/internal/platform/config"
	"paycore/internal/platform/logging"
)

type rootOptions struct {
	fixture  string
	logLevel string
	envFile  string

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand builds the payroll command tree. Results go to the command's
// output writer and logs to its error writer.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "payroll",
		Short:         "Compute payslips and run payroll batches",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.fixture, "fixture", "", "run against a YAML dataset instead of Postgres")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load when present")

	root.AddCommand(
		newMigrateCommand(opts),
		newComputeCommand(opts),
		newRunCommand(opts),
		newValidateCommand(opts),
		newWorkerCommand(opts),
		newAuditCommand(opts),
	)
	return root
}

func (o *rootOptions) app(ctx context.Context) (*App, error) {
	return newApp(ctx, o.cfg, o.fixture, o.logger)
}

// checkID rejects identifiers Postgres would refuse before any query runs.
func (o *rootOptions) checkID(kind, id string) error {
	if o.fixture != "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q is not a UUID", kind, id)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
