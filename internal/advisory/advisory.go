// Package advisory owns the fixed operator-facing guidance text.
//
// Ownership boundary:
// - deny-path advisory wording
// - capability-absent advisory wording
//
// The wording is a user-facing contract; only the package names and
// the runtime version are parameterized.
package advisory

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Params names the distro packages the advisories point operators at.
type Params struct {
	// PkgManager is the install command form, e.g. "apt install".
	PkgManager string
	// RuntimePkgPrefix prefixes per-module distro packages, e.g.
	// "python3" yields "apt install python3-<module>".
	RuntimePkgPrefix string
	// ToolPkg provides the seeding tool directly, e.g. "python3-pip".
	ToolPkg string
	// CapabilityPkgSuffix is appended to the versioned runtime package
	// that restores the seeding capability, e.g. "venv" yields
	// "python3.10-venv".
	CapabilityPkgSuffix string
}

// Defaults returns the Debian-flavored parameter set.
func Defaults() Params {
	return Params{
		PkgManager:          "apt install",
		RuntimePkgPrefix:    "python3",
		ToolPkg:             "python3-pip",
		CapabilityPkgSuffix: "venv",
	}
}

// SystemInstallation is the deny-path advisory: seeding is disabled
// for the system installation and modules come from the OS packages.
func SystemInstallation(p Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "seeding is disabled for the system installation.\n")
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Modules for the system installation are handled by the OS package manager:\n")
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "    %s %s-<module name>\n", p.PkgManager, p.RuntimePkgPrefix)
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Install the %s package to use the seeding tool itself. Using it\n", p.ToolPkg)
	fmt.Fprintf(&b, "against the system installation can break modules the OS depends on,\n")
	fmt.Fprintf(&b, "so only use it inside virtual environments.\n")
	return b.String()
}

// CapabilityAbsent is printed when environment creation failed because
// the seeding capability is missing from the system installation. The
// package name is parameterized by the runtime's major.minor version;
// an unparseable version falls back to the raw string. The failing
// command line is echoed for diagnostics.
func CapabilityAbsent(p Params, version string, cmdline []string) string {
	pkg := fmt.Sprintf("%s-%s", versionedRuntime(p.RuntimePkgPrefix, version), p.CapabilityPkgSuffix)

	var b strings.Builder
	fmt.Fprintf(&b, "The environment was not created successfully because the seeding\n")
	fmt.Fprintf(&b, "capability is not available. Install the %s package using\n", pkg)
	fmt.Fprintf(&b, "the following command, then recreate the environment.\n")
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "    %s %s\n", p.PkgManager, pkg)
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Failing command: %s\n", strings.Join(cmdline, " "))
	return b.String()
}

// versionedRuntime derives the versioned runtime package name:
// prefix "python3" + version "3.10.12" -> "python3.10". A prefix that
// does not already name the major version gets the full major.minor
// appended. Unparseable versions are used verbatim.
func versionedRuntime(prefix, version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return prefix
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return prefix + "." + version
	}
	if strings.HasSuffix(prefix, fmt.Sprintf("%d", v.Major())) {
		return fmt.Sprintf("%s.%d", prefix, v.Minor())
	}
	return fmt.Sprintf("%s%d.%d", prefix, v.Major(), v.Minor())
}
