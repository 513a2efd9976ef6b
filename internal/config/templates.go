package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "seed":
		return seedTemplate, nil
	case "env":
		return envTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const seedTemplate = `bundle = "share/seedgate/bundle"
lib_root = "lib/seedgate"
runtime_version = ""

[advisory]
pkg_manager = "apt install"
runtime_pkg_prefix = "python3"
tool_pkg = "python3-pip"
capability_pkg_suffix = "venv"
`

const envTemplate = `seed_command = []
capability_probe = "share/seedgate/bundle/manifest.toml"
runtime_version = ""

[advisory]
pkg_manager = "apt install"
runtime_pkg_prefix = "python3"
tool_pkg = "python3-pip"
capability_pkg_suffix = "venv"
`
