// Package cli implements the cobra-based command line of fluxcast-backup.
//
// Running the root command with no arguments performs one backup pass. The
// doctor and config subcommands inspect the setup without touching the
// destination. This file defines the root command, the global flags and the
// translation of errors into process exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fluxcast/fluxcast-backup/internal/backup"
	"github.com/fluxcast/fluxcast-backup/internal/config"
	"github.com/fluxcast/fluxcast-backup/internal/logger"
	"github.com/fluxcast/fluxcast-backup/internal/model"
	"github.com/fluxcast/fluxcast-backup/internal/rsync"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput switches error and doctor output to JSON.
	// The backup report itself is always plain text.
	jsonOutput bool

	// verbose forces debug-level logging on stderr.
	verbose bool

	// configFile is an optional YAML or JSONC file with overrides.
	configFile string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// newExecutor builds the process runner used for rsync. Tests replace it
// with a fake so no real rsync is started.
var newExecutor = func() rsync.Executor {
	return rsync.NewExecExecutor()
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fluxcast-backup",
		Short: "Mirror the fluxcast source tree to the backup share with rsync",
		Long: `fluxcast-backup runs one rsync pass that mirrors the source directory
onto the backup directory:

  rsync -av --delete --exclude-from <source>.gitignore <source> <backup>

Files deleted at the source are deleted from the backup, and patterns in the
source's .gitignore are skipped. Start and completion timestamps and the rsync
transfer log are printed to stdout.

Examples:
  fluxcast-backup
  fluxcast-backup --source /srv/app/ --destination /mnt/backup/app/
  fluxcast-backup --config ~/.config/fluxcast-backup.yaml`,

		Args: cobra.NoArgs,

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd)
		},
	}

	// PersistentFlags are inherited by the doctor and config subcommands.
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "Output errors and reports in JSON format")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	pf.StringVarP(&configFile, "config", "c", "", "Config file (.yaml, .yml, .json or .jsonc)")
	pf.String(config.KeySource, "", "Source directory, must end with a path separator (default "+config.DefaultSource+")")
	pf.String(config.KeyDestination, "", "Backup directory (default "+config.DefaultDestination+")")
	pf.String(config.KeyRsync, "", "rsync binary (default "+config.DefaultRsync+")")
	pf.String(config.KeyLogLevel, "", "Log level: debug, info, warn, error (default "+config.DefaultLogLevel+")")

	rootCmd.AddCommand(NewDoctorCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command and exits the process with the code
// carried by the returned error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(int(ExitCodeFor(err)))
	}
}

// ExitCodeFor maps an error to a process exit code. CLIError carries its
// own code; anything else is a general error.
func ExitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitGeneralError
}

// loadConfig resolves and validates the configuration for cmd and
// initializes the shared logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(config.LoadOptions{File: configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.Init(level)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log.Debugf("Source: %s", cfg.Source)
	log.Debugf("Destination: %s", cfg.Destination)
	log.Debugf("Exclude from: %s", cfg.ExcludeFile())
	return cfg, log, nil
}

// runBackup performs one backup pass with the resolved configuration.
func runBackup(cmd *cobra.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runner, err := backup.NewRunner(backup.Options{
		Config:   cfg,
		Executor: newExecutor(),
		Out:      cmd.OutOrStdout(),
		Logger:   log,
	})
	if err != nil {
		return err
	}
	return runner.Run(cmd.Context())
}

// printError outputs an error in the format selected by --json.
func printError(w io.Writer, err error) {
	code := ExitCodeFor(err)

	if jsonOutput {
		errObj := map[string]interface{}{
			"message": err.Error(),
			"code":    int(code),
			"kind":    code.String(),
		}
		if rsyncCode, ok := backup.ExitCode(err); ok {
			errObj["rsyncExitCode"] = rsyncCode
		}
		data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err)
}
