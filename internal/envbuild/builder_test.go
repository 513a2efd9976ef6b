package envbuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/seedgate/internal/advisory"
	"github.com/danmuck/seedgate/internal/envinfo"
	"github.com/danmuck/seedgate/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(base string, runner tools.Runner) *Builder {
	return &Builder{
		Base:            envinfo.Descriptor{ActivePrefix: base, BasePrefix: base},
		SeedCommand:     []string{"/usr/bin/seedctl"},
		CapabilityProbe: "share/seedgate/bundle/manifest.toml",
		RuntimeVersion:  "3.10.12",
		Advisory:        advisory.Defaults(),
		Runner:          runner,
	}
}

func okRunner(captured *[]string) tools.Runner {
	return tools.RunnerFunc(func(_ context.Context, name string, args ...string) (tools.Result, error) {
		if captured != nil {
			*captured = append([]string{name}, args...)
		}
		return tools.Result{}, nil
	})
}

func failRunner(err error) tools.Runner {
	return tools.RunnerFunc(func(context.Context, string, ...string) (tools.Result, error) {
		return tools.Result{ExitCode: 1}, err
	})
}

func TestCreateLaysOutEnvironmentAndSeeds(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(t.TempDir(), "env")

	var cmdline []string
	b := newBuilder(base, okRunner(&cmdline))
	require.NoError(t, b.Create(context.Background(), target))

	assert.DirExists(t, filepath.Join(target, "bin"))
	assert.DirExists(t, filepath.Join(target, "lib"))

	cfg, err := os.ReadFile(filepath.Join(target, envinfo.CfgFileName))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "base-prefix = "+base)
	assert.Contains(t, string(cfg), "version = 3.10.12")

	require.Len(t, cmdline, 3)
	assert.Equal(t, "/usr/bin/seedctl", cmdline[0])
	assert.Equal(t, "--prefix", cmdline[1])
	assert.Equal(t, target, cmdline[2])
}

func TestCreateRefusesExistingPath(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()

	b := newBuilder(base, okRunner(nil))
	err := b.Create(context.Background(), target)
	assert.ErrorIs(t, err, ErrEnvExists)
}

func TestCreateCapabilityAbsent(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(t.TempDir(), "env")

	cause := errors.New("exit status 1")
	b := newBuilder(base, failRunner(cause))
	// No bundle manifest under base: the capability probe fails.
	err := b.Create(context.Background(), target)

	var absent *CapabilityAbsentError
	require.True(t, errors.As(err, &absent))
	assert.Equal(t, ExitCapabilityAbsent, absent.Code)
	assert.NotZero(t, absent.Code)
	assert.Contains(t, absent.Advisory, "apt install python3.10-venv")
	assert.Contains(t, absent.Advisory, "Failing command: /usr/bin/seedctl --prefix "+target)
	assert.ErrorIs(t, err, cause)
}

func TestCreateReSignalsFailureWhenCapabilityPresent(t *testing.T) {
	base := t.TempDir()
	probe := filepath.Join(base, "share", "seedgate", "bundle", "manifest.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(probe), 0o755))
	require.NoError(t, os.WriteFile(probe, []byte("packages = []\n"), 0o644))

	target := filepath.Join(t.TempDir(), "env")
	cause := errors.New("bundle corrupt")
	b := newBuilder(base, failRunner(cause))

	err := b.Create(context.Background(), target)
	// Original failure comes back unchanged, never dressed up as a
	// capability problem.
	assert.ErrorIs(t, err, cause)
	var absent *CapabilityAbsentError
	assert.False(t, errors.As(err, &absent))
}

func TestCreateClassifiesSilentNonZeroExit(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(t.TempDir(), "env")

	// Runner reports exit 1 without an error value; still a failure.
	b := newBuilder(base, tools.RunnerFunc(func(context.Context, string, ...string) (tools.Result, error) {
		return tools.Result{ExitCode: 1}, nil
	}))
	err := b.Create(context.Background(), target)

	var absent *CapabilityAbsentError
	require.True(t, errors.As(err, &absent))
}
