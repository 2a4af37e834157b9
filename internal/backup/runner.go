// Package backup performs one mirroring pass of the source tree onto the
// backup destination.
//
// A pass is a single linear sequence: print the start timestamp, run rsync
// synchronously, then either forward its transfer log and print the
// completion timestamp, or print its error text and return a failure. There
// are no retries; a failure is reported once and propagated to the caller.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fluxcast/fluxcast-backup/internal/config"
	"github.com/fluxcast/fluxcast-backup/internal/logger"
	"github.com/fluxcast/fluxcast-backup/internal/model"
	"github.com/fluxcast/fluxcast-backup/internal/rsync"
)

// TimestampLayout renders wall-clock timestamps in the report lines,
// e.g. "2026-10-16 09:30:00.123456".
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Report labels. Tests and log scrapers match on these literals.
const (
	LabelStarted   = "Starting backup: "
	LabelCompleted = "Backup completed: "
	LabelFailed    = "Backup failed with error:\n"
)

// Options wires a Runner to its collaborators. Only Config is required.
type Options struct {
	Config *config.Config

	// Executor runs rsync. Defaults to rsync.NewExecExecutor().
	Executor rsync.Executor

	// Out receives the report lines and the forwarded rsync output.
	// Defaults to os.Stdout.
	Out io.Writer

	// Now is the wall clock. Defaults to time.Now.
	Now func() time.Time

	// Logger receives diagnostics. Defaults to the shared logger.
	Logger logrus.FieldLogger
}

// Runner mirrors one source directory onto one destination.
type Runner struct {
	cfg    *config.Config
	exec   rsync.Executor
	out    io.Writer
	now    func() time.Time
	logger logrus.FieldLogger
}

// NewRunner validates the configuration and builds a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, model.NewCLIError(model.ExitInvalidConfig, "backup runner requires a configuration")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:    opts.Config,
		exec:   opts.Executor,
		out:    opts.Out,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if r.exec == nil {
		r.exec = rsync.NewExecExecutor()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = logger.Get()
	}
	return r, nil
}

// Args returns the rsync argument vector this runner issues.
func (r *Runner) Args() []string {
	return rsync.BuildArgs(r.cfg.Source, r.cfg.Destination, r.cfg.ExcludeFile())
}

// Run performs exactly one mirroring pass and blocks until rsync exits.
//
// On success the output is the start line, rsync's stdout verbatim, and the
// completion line. On a non-zero exit it is the start line followed by the
// failure label and rsync's stderr, and the returned error is a
// *model.CLIError with ExitSyncFailed wrapping an *rsync.ExitError.
func (r *Runner) Run(ctx context.Context) error {
	args := r.Args()
	log := r.logger.WithFields(logrus.Fields{
		"source":      r.cfg.Source,
		"destination": r.cfg.Destination,
	})

	if _, err := fmt.Fprintln(r.out, LabelStarted+r.timestamp()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	log.Debugf("Executing: %s", rsync.CommandLine(r.cfg.RsyncBin, args))
	out, err := r.exec.Execute(ctx, r.cfg.RsyncBin, args)
	if err != nil {
		log.WithError(err).Error("rsync could not be started")
		return model.WrapCLIError(model.ExitToolNotFound,
			fmt.Sprintf("cannot run %s", r.cfg.RsyncBin), err)
	}

	if !out.Success() {
		exitErr := &rsync.ExitError{Code: out.ExitCode, Stderr: out.Stderr}
		// The failure report goes out before the error is propagated.
		_, _ = fmt.Fprintln(r.out, LabelFailed+out.Stderr)
		log.WithField("exit_code", out.ExitCode).Warn("backup failed")
		return model.WrapCLIError(model.ExitSyncFailed, "backup failed", exitErr)
	}

	if _, err := fmt.Fprintln(r.out, out.Stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if _, err := fmt.Fprintln(r.out, LabelCompleted+r.timestamp()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Debug("backup completed")
	return nil
}

func (r *Runner) timestamp() string {
	return r.now().Format(TimestampLayout)
}

// ExitCode extracts the rsync exit status from an error returned by Run.
// ok is false when err did not come from a non-zero rsync exit.
func ExitCode(err error) (code int, ok bool) {
	var exitErr *rsync.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
