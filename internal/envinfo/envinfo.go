// Package envinfo owns the runtime environment descriptor.
//
// Ownership boundary:
// - prefix resolution for the running process
// - isolation marker probing
//
// Envinfo does not decide whether seeding is permitted.
package envinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvLegacyRoot is exported by the pre-standard isolation mechanism
	// and points at its environment root.
	EnvLegacyRoot = "SEEDGATE_LEGACY_ROOT"
	// EnvPrefix overrides executable-relative prefix resolution.
	EnvPrefix = "SEEDGATE_PREFIX"

	// CfgFileName is written into every isolated environment's prefix
	// and records the base installation it was created from.
	CfgFileName = "env.cfg"

	cfgKeyBasePrefix = "base-prefix"
	cfgKeyVersion    = "version"
)

// Descriptor is a read-only snapshot of the process state the gate
// consults. It is rebuilt for every decision and never cached.
type Descriptor struct {
	LegacyMarker bool
	ActivePrefix string
	BasePrefix   string
	Version      string
}

// SystemInstallation reports whether the snapshot describes the
// shared system installation rather than an isolated environment.
func (d Descriptor) SystemInstallation() bool {
	return d.ActivePrefix == d.BasePrefix && !d.LegacyMarker
}

// Snapshot reads a fresh descriptor from ambient process state.
//
// The active prefix comes from SEEDGATE_PREFIX when set, otherwise
// from the directory two levels above the running executable
// (<prefix>/bin/<tool>). The base prefix comes from the env.cfg file
// inside the active prefix when one exists; a prefix without env.cfg
// is its own base.
func Snapshot() (Descriptor, error) {
	active := strings.TrimSpace(os.Getenv(EnvPrefix))
	if active == "" {
		exe, err := os.Executable()
		if err != nil {
			return Descriptor{}, err
		}
		active = filepath.Dir(filepath.Dir(exe))
	}
	active = filepath.Clean(active)

	d := Descriptor{
		LegacyMarker: strings.TrimSpace(os.Getenv(EnvLegacyRoot)) != "",
		ActivePrefix: active,
		BasePrefix:   active,
	}

	cfg, err := readCfg(filepath.Join(active, CfgFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return Descriptor{}, err
	}
	if base := cfg[cfgKeyBasePrefix]; base != "" {
		d.BasePrefix = filepath.Clean(base)
	}
	d.Version = cfg[cfgKeyVersion]
	return d, nil
}

// readCfg parses the flat "key = value" format of env.cfg. Unknown
// keys are kept so future markers do not break older tools.
func readCfg(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, scanner.Err()
}

// WriteCfg writes an env.cfg recording the base prefix and runtime
// version for a freshly created environment.
func WriteCfg(prefix, basePrefix, version string) error {
	var b strings.Builder
	b.WriteString(cfgKeyBasePrefix + " = " + basePrefix + "\n")
	if version != "" {
		b.WriteString(cfgKeyVersion + " = " + version + "\n")
	}
	return os.WriteFile(filepath.Join(prefix, CfgFileName), []byte(b.String()), 0o644)
}
