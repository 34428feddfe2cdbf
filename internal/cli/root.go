// Package cli implements fnectl, the command line front-end of FNEV4.
//
// Command tree:
//
//	fnectl
//	├── import invoices <file> [--dry-run]
//	├── import clients <file> [--dry-run]
//	├── template clients <out.xlsx>
//	├── certify <id>...
//	└── invoices list [--status]
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fnev4/fnev4/internal/config"
	"github.com/fnev4/fnev4/internal/container"
	"github.com/fnev4/fnev4/pkg/utils"
)

// app carries the global flags shared by every command
type app struct {
	cfgFile string
	verbose bool
}

// NewRootCommand builds the fnectl command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fnectl",
		Short: "Import Sage 100 exports and certify invoices with the DGI FNE platform",
		Long: `fnectl imports Sage 100 invoice workbooks and client lists into the local
FNEV4 database and submits draft invoices to the DGI FNE API.

Example Usage:
  fnectl import invoices export.xlsx --dry-run   # validate without saving
  fnectl import clients clients.xlsx             # create or update clients
  fnectl template clients clients.xlsx           # write a blank client template
  fnectl invoices list --status DRAFT
  fnectl certify 12 13 14`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "configs/config.yaml", "Path to the configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(
		newImportCommand(a),
		newTemplateCommand(a),
		newCertifyCommand(a),
		newInvoicesCommand(a),
	)

	return root
}

// withServices starts the container for one command and always closes it
func (a *app) withServices(ctx context.Context, fn func(*container.ServiceBundle) error) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	logger, err := a.newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close container", zap.Error(err))
		}
	}()

	return fn(c.Services())
}

// newLogger keeps stdout for command output
func (a *app) newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.ToLoggerConfig()
	if lc.OutputPath == "" || lc.OutputPath == "stdout" {
		lc.OutputPath = "stderr"
	}
	lc.Name = "fnectl"
	lc.Level = "warn"
	if a.verbose {
		lc.Level = "debug"
	}
	return utils.NewLogger(lc)
}
