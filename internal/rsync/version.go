package rsync

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hashicorp/go-version"
)

// MinVersion is the oldest rsync release known to handle the
// -av --delete --exclude-from combination the way the backup expects.
const MinVersion = "2.6.0"

// versionPattern matches the release number in an `rsync --version` banner.
//
// Samba rsync prints "rsync  version 3.2.7  protocol version 31" (newer builds
// prefix the number with "v"), while openrsync on macOS prints
// "openrsync: protocol version 29" followed by "rsync version 2.6.9 compatible".
// Requiring a dot skips the bare protocol number in both cases.
var versionPattern = regexp.MustCompile(`version\s+v?(\d+\.\d+(?:\.\d+)?)`)

// ParseVersion extracts the rsync release from `rsync --version` output.
func ParseVersion(banner string) (*version.Version, error) {
	m := versionPattern.FindStringSubmatch(banner)
	if m == nil {
		return nil, fmt.Errorf("no rsync version found in output %q", firstLine(banner))
	}
	v, err := version.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("invalid rsync version %q: %w", m[1], err)
	}
	return v, nil
}

// Version runs `<bin> --version` using ex and parses the banner.
func Version(ctx context.Context, ex Executor, bin string) (*version.Version, error) {
	out, err := ex.Execute(ctx, bin, []string{"--version"})
	if err != nil {
		return nil, err
	}
	if !out.Success() {
		return nil, &ExitError{Code: out.ExitCode, Stderr: out.Stderr}
	}
	return ParseVersion(out.Stdout)
}

// CheckVersion returns an error when v is older than MinVersion.
func CheckVersion(v *version.Version) error {
	minimum := version.Must(version.NewVersion(MinVersion))
	if v.LessThan(minimum) {
		return fmt.Errorf("rsync %s is older than the required %s", v, minimum)
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
