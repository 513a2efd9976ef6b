// Package envbuild owns creation of new isolated environments.
//
// Ownership boundary:
// - environment directory layout and env.cfg
// - seeding subprocess invocation
// - capability-absence classification of seeding failures
package envbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/seedgate/internal/advisory"
	"github.com/danmuck/seedgate/internal/envinfo"
	"github.com/danmuck/seedgate/internal/tools"
	"github.com/rs/zerolog/log"
)

// ExitCapabilityAbsent is the process exit status when the seeding
// capability is missing from the base installation entirely.
const ExitCapabilityAbsent = 4

var ErrEnvExists = errors.New("envbuild: environment path already exists")

// CapabilityAbsentError reports that seeding failed because the
// capability is not installed, as opposed to failing while present.
// It carries the advisory main prints before exiting.
type CapabilityAbsentError struct {
	Advisory string
	Code     int
	// Cause is the seeding subprocess failure that triggered the probe.
	Cause error
}

func (e *CapabilityAbsentError) Error() string {
	return "envbuild: seeding capability absent"
}

func (e *CapabilityAbsentError) Unwrap() error {
	return e.Cause
}

// Builder creates environments rooted at a prefix and seeds them.
type Builder struct {
	// Base describes the installation envctl itself runs from; its
	// base prefix anchors the capability probe and env.cfg.
	Base envinfo.Descriptor
	// SeedCommand runs the seeding entry point. Empty means the
	// seedctl binary in the same directory as the current executable.
	SeedCommand []string
	// CapabilityProbe is resolved against Base.BasePrefix.
	CapabilityProbe string
	RuntimeVersion  string
	Advisory        advisory.Params
	Runner          tools.Runner
}

// Create lays out a new environment at path, then invokes the seeding
// subprocess for it. A seeding failure with the capability probe
// absent becomes a *CapabilityAbsentError; any other seeding failure
// is re-signaled unchanged.
func (b *Builder) Create(ctx context.Context, path string) error {
	prefix, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(prefix); err == nil {
		return fmt.Errorf("%w: %s", ErrEnvExists, prefix)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	for _, dir := range []string{"bin", "lib"} {
		if err := os.MkdirAll(filepath.Join(prefix, dir), 0o755); err != nil {
			return err
		}
	}
	if err := envinfo.WriteCfg(prefix, b.Base.BasePrefix, b.RuntimeVersion); err != nil {
		return err
	}
	log.Info().Str("prefix", prefix).Msg("environment laid out")

	cmdline, err := b.seedCmdline(prefix)
	if err != nil {
		return err
	}
	runner := b.Runner
	if runner == nil {
		runner = tools.ExecRunner{}
	}

	res, runErr := runner.Run(ctx, cmdline[0], cmdline[1:]...)
	if runErr == nil && !res.Failed() {
		log.Info().Str("prefix", prefix).Msg("environment seeded")
		return nil
	}
	if runErr == nil {
		runErr = fmt.Errorf("envbuild: seeding exited %d", res.ExitCode)
	}

	if b.capabilityPresent() {
		// Capability is installed; the failure is someone else's to
		// explain. Re-signal unchanged.
		return runErr
	}
	log.Error().Str("prefix", prefix).Msg("seeding capability absent")
	return &CapabilityAbsentError{
		Advisory: advisory.CapabilityAbsent(b.Advisory, b.RuntimeVersion, cmdline),
		Code:     ExitCapabilityAbsent,
		Cause:    runErr,
	}
}

// seedCmdline appends the target prefix so the echoed failing command
// is reproducible as-is.
func (b *Builder) seedCmdline(prefix string) ([]string, error) {
	base := b.SeedCommand
	if len(base) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		base = []string{filepath.Join(filepath.Dir(exe), "seedctl")}
	}
	cmdline := make([]string, 0, len(base)+2)
	cmdline = append(cmdline, base...)
	return append(cmdline, "--prefix", prefix), nil
}

func (b *Builder) capabilityPresent() bool {
	probe := b.CapabilityProbe
	if !filepath.IsAbs(probe) {
		probe = filepath.Join(b.Base.BasePrefix, probe)
	}
	_, err := os.Stat(probe)
	return err == nil
}
