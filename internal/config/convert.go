package config

import (
	"github.com/danmuck/seedgate/internal/advisory"
)

// AdvisoryParams maps the config section onto advisory parameters.
func AdvisoryParams(a AdvisoryConfig) advisory.Params {
	return advisory.Params{
		PkgManager:          a.PkgManager,
		RuntimePkgPrefix:    a.RuntimePkgPrefix,
		ToolPkg:             a.ToolPkg,
		CapabilityPkgSuffix: a.CapabilityPkgSuffix,
	}
}
