// Package cli — doctor.go implements the "fluxcast-backup doctor" command.
//
// doctor checks everything a backup pass depends on without running it:
// the rsync binary and its version, the source directory, the exclusion
// file, and the destination. Optional path arguments are tested against
// the exclusion list to show whether rsync would skip them.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxcast/fluxcast-backup/internal/config"
	"github.com/fluxcast/fluxcast-backup/internal/exclude"
	"github.com/fluxcast/fluxcast-backup/internal/model"
	"github.com/fluxcast/fluxcast-backup/internal/rsync"
)

// CheckResult is one line of the doctor report.
type CheckResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// PathResult reports whether a source-relative path is excluded.
type PathResult struct {
	Path     string `json:"path"`
	Excluded bool   `json:"excluded"`
}

// DoctorReport is the full doctor output.
type DoctorReport struct {
	Checks []CheckResult `json:"checks"`
	Paths  []PathResult  `json:"paths,omitempty"`
}

// Healthy reports whether every check passed.
func (r *DoctorReport) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [path...]",
		Short: "Check rsync, the source, the exclusion file and the destination",
		Long: `Check that a backup pass can run, without running it.

Paths given as arguments are interpreted relative to the source directory
and reported as excluded or included according to the source's .gitignore.

Examples:
  fluxcast-backup doctor
  fluxcast-backup doctor node_modules/ build/app.log src/routes/+page.svelte
  fluxcast-backup doctor --json`,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			report := Diagnose(cmd.Context(), cfg, newExecutor(), args)
			if err := writeReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Healthy() {
				return model.NewCLIError(model.ExitInvalidConfig, "one or more checks failed")
			}
			return nil
		},
	}
}

// Diagnose runs all doctor checks against cfg. It never modifies the filesystem.
func Diagnose(ctx context.Context, cfg *config.Config, ex rsync.Executor, paths []string) *DoctorReport {
	report := &DoctorReport{}
	report.Checks = append(report.Checks,
		checkRsync(ctx, cfg, ex),
		checkSource(cfg),
	)

	excludeCheck, list := checkExcludeFile(cfg)
	report.Checks = append(report.Checks, excludeCheck, checkDestination(cfg))

	for _, p := range paths {
		isDir := strings.HasSuffix(p, "/")
		if !isDir {
			if info, err := os.Stat(filepath.Join(cfg.Source, p)); err == nil && info.IsDir() {
				isDir = true
			}
		}
		report.Paths = append(report.Paths, PathResult{Path: p, Excluded: list.Matches(p, isDir)})
	}
	return report
}

func checkRsync(ctx context.Context, cfg *config.Config, ex rsync.Executor) CheckResult {
	res := CheckResult{Name: "rsync"}
	v, err := rsync.Version(ctx, ex, cfg.RsyncBin)
	if err != nil {
		res.Detail = err.Error()
		return res
	}
	if err := rsync.CheckVersion(v); err != nil {
		res.Detail = err.Error()
		return res
	}
	res.OK = true
	res.Detail = fmt.Sprintf("%s %s", cfg.RsyncBin, v)
	return res
}

func checkSource(cfg *config.Config) CheckResult {
	res := CheckResult{Name: "source"}
	info, err := os.Stat(cfg.Source)
	switch {
	case err != nil:
		res.Detail = err.Error()
	case !info.IsDir():
		res.Detail = fmt.Sprintf("%s is not a directory", cfg.Source)
	default:
		res.OK = true
		res.Detail = cfg.Source
	}
	return res
}

// checkExcludeFile loads the exclusion file. A missing file fails the check
// because rsync aborts the pass when --exclude-from cannot be opened.
func checkExcludeFile(cfg *config.Config) (CheckResult, *exclude.List) {
	res := CheckResult{Name: "exclude-from"}
	list, err := exclude.Load(cfg.ExcludeFile())
	if err != nil {
		res.Detail = err.Error()
		return res, nil
	}
	res.OK = true
	res.Detail = fmt.Sprintf("%s (%d patterns)", list.Path, list.Patterns)
	return res, list
}

// checkDestination accepts an existing directory, or a missing directory
// whose parent exists, since rsync creates the last path component itself.
func checkDestination(cfg *config.Config) CheckResult {
	res := CheckResult{Name: "destination"}
	info, err := os.Stat(cfg.Destination)
	if err == nil {
		if !info.IsDir() {
			res.Detail = fmt.Sprintf("%s is not a directory", cfg.Destination)
			return res
		}
		res.OK = true
		res.Detail = cfg.Destination
		return res
	}
	if !os.IsNotExist(err) {
		res.Detail = err.Error()
		return res
	}

	parent := filepath.Dir(filepath.Clean(cfg.Destination))
	if pinfo, perr := os.Stat(parent); perr == nil && pinfo.IsDir() {
		res.OK = true
		res.Detail = fmt.Sprintf("%s (will be created)", cfg.Destination)
		return res
	}
	res.Detail = fmt.Sprintf("%s does not exist and neither does %s", cfg.Destination, parent)
	return res
}

func writeReport(w io.Writer, report *DoctorReport) error {
	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	for _, c := range report.Checks {
		status := "ok"
		if !c.OK {
			status = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "[%-4s] %-13s %s\n", status, c.Name, c.Detail); err != nil {
			return err
		}
	}
	for _, p := range report.Paths {
		verdict := "included"
		if p.Excluded {
			verdict = "excluded"
		}
		if _, err := fmt.Fprintf(w, "%-8s %s\n", verdict, p.Path); err != nil {
			return err
		}
	}
	return nil
}
