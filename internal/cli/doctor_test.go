package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcast/fluxcast-backup/internal/config"
	"github.com/fluxcast/fluxcast-backup/internal/model"
)

const sampleBanner = "rsync  version 3.2.7  protocol version 31\n"

// newDoctorFixture builds a healthy source tree with a .gitignore.
func newDoctorFixture(t *testing.T) *config.Config {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, ".gitignore"), []byte("# deps\nnode_modules/\n*.log\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "node_modules"), 0o755))
	return &config.Config{
		Source:      src + string(os.PathSeparator),
		Destination: filepath.Join(t.TempDir(), "mirror"),
		RsyncBin:    "rsync",
	}
}

func findCheck(t *testing.T, report *DoctorReport, name string) CheckResult {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not in report", name)
	return CheckResult{}
}

func TestDiagnose_Healthy(t *testing.T) {
	cfg := newDoctorFixture(t)
	fake := &fakeExecutor{banner: sampleBanner}

	report := Diagnose(context.Background(), cfg, fake, []string{"node_modules", "build/app.log", "src/app.ts"})

	assert.True(t, report.Healthy())
	assert.Equal(t, "rsync 3.2.7", findCheck(t, report, "rsync").Detail)
	assert.Contains(t, findCheck(t, report, "exclude-from").Detail, "(2 patterns)")
	assert.Contains(t, findCheck(t, report, "destination").Detail, "will be created")
	assert.Equal(t, []PathResult{
		{Path: "node_modules", Excluded: true},
		{Path: "build/app.log", Excluded: true},
		{Path: "src/app.ts", Excluded: false},
	}, report.Paths)

	assert.Equal(t, [][]string{{"--version"}}, fake.calls, "doctor never starts a transfer")
}

func TestDiagnose_Failures(t *testing.T) {
	cfg := newDoctorFixture(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Source, ".gitignore")))
	cfg.Destination = filepath.Join(t.TempDir(), "missing", "mirror")

	report := Diagnose(context.Background(), cfg, &fakeExecutor{banner: "rsync  version 2.5.7  protocol version 26\n"}, nil)

	assert.False(t, report.Healthy())
	assert.False(t, findCheck(t, report, "rsync").OK)
	assert.True(t, findCheck(t, report, "source").OK)
	assert.False(t, findCheck(t, report, "exclude-from").OK)
	assert.False(t, findCheck(t, report, "destination").OK)
}

func TestDoctorCommand(t *testing.T) {
	cfg := newDoctorFixture(t)
	useExecutor(t, &fakeExecutor{banner: sampleBanner})

	out, err := execute(t, "doctor", "--source", cfg.Source, "--destination", cfg.Destination, "x.log")
	require.NoError(t, err)
	assert.Contains(t, out, "[ok  ] rsync")
	assert.Contains(t, out, "excluded x.log")
}

func TestDoctorCommand_FailsWhenUnhealthy(t *testing.T) {
	cfg := newDoctorFixture(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Source, ".gitignore")))
	useExecutor(t, &fakeExecutor{banner: sampleBanner})

	out, err := execute(t, "doctor", "--json", "--source", cfg.Source, "--destination", cfg.Destination)
	t.Cleanup(func() { jsonOutput = false })
	require.Error(t, err)
	assert.Equal(t, model.ExitInvalidConfig, ExitCodeFor(err))
	assert.Contains(t, out, `"name": "exclude-from"`)
	assert.Contains(t, out, `"ok": false`)
}
