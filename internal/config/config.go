package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// AdvisoryConfig names the OS packages the advisories point at.
type AdvisoryConfig struct {
	PkgManager          string `toml:"pkg_manager"`
	RuntimePkgPrefix    string `toml:"runtime_pkg_prefix"`
	ToolPkg             string `toml:"tool_pkg"`
	CapabilityPkgSuffix string `toml:"capability_pkg_suffix"`
}

// SeedConfig configures the seedctl command.
type SeedConfig struct {
	// Bundle is the bootstrap bundle directory, relative to the base
	// prefix unless absolute.
	Bundle string `toml:"bundle"`
	// LibRoot is the library root seeded packages land in, relative to
	// the active prefix unless absolute.
	LibRoot string `toml:"lib_root"`
	// RuntimeVersion overrides the version recorded in env.cfg.
	RuntimeVersion string         `toml:"runtime_version"`
	Advisory       AdvisoryConfig `toml:"advisory"`
}

// EnvConfig configures the envctl command.
type EnvConfig struct {
	// SeedCommand invokes the seeding entry point for a new
	// environment. Defaults to the seedctl binary next to envctl.
	SeedCommand []string `toml:"seed_command"`
	// CapabilityProbe is the path, relative to the base prefix, whose
	// absence marks the seeding capability as missing entirely.
	CapabilityProbe string `toml:"capability_probe"`
	// RuntimeVersion is written into each new environment's env.cfg.
	RuntimeVersion string         `toml:"runtime_version"`
	Advisory       AdvisoryConfig `toml:"advisory"`
}

// Overrides are applied on top of the file for both commands.
type Overrides struct {
	Bundle          string `env:"SEEDGATE_BUNDLE"`
	LibRoot         string `env:"SEEDGATE_LIB_ROOT"`
	CapabilityProbe string `env:"SEEDGATE_CAPABILITY_PROBE"`
	RuntimeVersion  string `env:"SEEDGATE_RUNTIME_VERSION"`
}

const (
	defaultBundle          = "share/seedgate/bundle"
	defaultLibRoot         = "lib/seedgate"
	defaultCapabilityProbe = "share/seedgate/bundle/manifest.toml"
)

// LoadSeedConfig reads a seedctl config. An empty path yields the
// defaults; a named file must exist and parse.
func LoadSeedConfig(path string) (SeedConfig, error) {
	var cfg SeedConfig
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return SeedConfig{}, err
		}
	}
	ov, err := parseOverrides()
	if err != nil {
		return SeedConfig{}, err
	}
	if ov.Bundle != "" {
		cfg.Bundle = ov.Bundle
	}
	if ov.LibRoot != "" {
		cfg.LibRoot = ov.LibRoot
	}
	if ov.RuntimeVersion != "" {
		cfg.RuntimeVersion = ov.RuntimeVersion
	}
	if cfg.Bundle == "" {
		cfg.Bundle = defaultBundle
	}
	if cfg.LibRoot == "" {
		cfg.LibRoot = defaultLibRoot
	}
	applyAdvisoryDefaults(&cfg.Advisory)
	if err := ValidateSeedConfig(cfg); err != nil {
		return SeedConfig{}, err
	}
	return cfg, nil
}

// LoadEnvConfig reads an envctl config. An empty path yields the
// defaults; a named file must exist and parse.
func LoadEnvConfig(path string) (EnvConfig, error) {
	var cfg EnvConfig
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return EnvConfig{}, err
		}
	}
	ov, err := parseOverrides()
	if err != nil {
		return EnvConfig{}, err
	}
	if ov.CapabilityProbe != "" {
		cfg.CapabilityProbe = ov.CapabilityProbe
	}
	if ov.RuntimeVersion != "" {
		cfg.RuntimeVersion = ov.RuntimeVersion
	}
	if cfg.CapabilityProbe == "" {
		cfg.CapabilityProbe = defaultCapabilityProbe
	}
	applyAdvisoryDefaults(&cfg.Advisory)
	if err := ValidateEnvConfig(cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

func parseOverrides() (Overrides, error) {
	var ov Overrides
	if err := env.Parse(&ov); err != nil {
		return Overrides{}, fmt.Errorf("config env overrides: %w", err)
	}
	return ov, nil
}

func applyAdvisoryDefaults(a *AdvisoryConfig) {
	if a.PkgManager == "" {
		a.PkgManager = "apt install"
	}
	if a.RuntimePkgPrefix == "" {
		a.RuntimePkgPrefix = "python3"
	}
	if a.ToolPkg == "" {
		a.ToolPkg = "python3-pip"
	}
	if a.CapabilityPkgSuffix == "" {
		a.CapabilityPkgSuffix = "venv"
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateSeedConfig(cfg SeedConfig) error {
	if strings.TrimSpace(cfg.Bundle) == "" {
		return fmt.Errorf("seed config missing bundle")
	}
	if strings.TrimSpace(cfg.LibRoot) == "" {
		return fmt.Errorf("seed config missing lib_root")
	}
	return ValidateAdvisory(cfg.Advisory)
}

func ValidateEnvConfig(cfg EnvConfig) error {
	if strings.TrimSpace(cfg.CapabilityProbe) == "" {
		return fmt.Errorf("env config missing capability_probe")
	}
	for i, part := range cfg.SeedCommand {
		if strings.TrimSpace(part) == "" {
			return fmt.Errorf("seed_command[%d] is empty", i)
		}
	}
	return ValidateAdvisory(cfg.Advisory)
}

func ValidateAdvisory(a AdvisoryConfig) error {
	if strings.TrimSpace(a.PkgManager) == "" {
		return fmt.Errorf("advisory missing pkg_manager")
	}
	if strings.TrimSpace(a.ToolPkg) == "" {
		return fmt.Errorf("advisory missing tool_pkg")
	}
	return nil
}
