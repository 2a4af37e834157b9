package rsync

import (
	"fmt"
	"strings"
)

// DefaultBinary is the rsync executable looked up on PATH when no explicit
// path is configured.
const DefaultBinary = "rsync"

// BuildArgs returns the argument vector for one mirroring pass:
//
//	-av --delete --exclude-from <excludeFile> <source> <destination>
//
// -a is archive mode (recursive, preserve permissions, times, symlinks and
// ownership where possible), -v lists every transferred file, and --delete
// removes destination entries that no longer exist at the source. Patterns in
// excludeFile are skipped for both transfer and deletion.
//
// The order is significant: source and destination are positional and must
// come last. A trailing separator on source means "the contents of the
// directory" rather than the directory itself.
func BuildArgs(source, destination, excludeFile string) []string {
	return []string{
		"-av",
		"--delete",
		"--exclude-from", excludeFile,
		source,
		destination,
	}
}

// ExitError reports that rsync ran but exited with a non-zero status.
// It is the only failure kind of a backup pass: missing exclusion file,
// permission problems and interrupted transfers all surface through it.
type ExitError struct {
	// Code is the rsync exit status (-1 when the process was killed by a signal).
	Code int

	// Stderr is the captured standard error text, untrimmed.
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("rsync exited with status %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		// Only the last line; rsync puts its "rsync error: ... (code N)" summary there.
		lines := strings.Split(s, "\n")
		msg = fmt.Sprintf("%s: %s", msg, lines[len(lines)-1])
	}
	return msg
}

// CommandLine renders a command for log output. Arguments are not quoted;
// it is meant for humans reading logs, not for re-execution.
func CommandLine(bin string, args []string) string {
	return strings.TrimSpace(bin + " " + strings.Join(args, " "))
}
