package advisory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemInstallationNamesPackages(t *testing.T) {
	text := SystemInstallation(Defaults())

	assert.Contains(t, text, "apt install python3-")
	assert.Contains(t, text, "python3-pip")
	assert.Contains(t, text, "disabled for the system installation")
	assert.True(t, strings.Count(text, "\n") > 3, "advisory is a multi-line block")
}

func TestCapabilityAbsentNamesVersionedPackage(t *testing.T) {
	cmdline := []string{"/usr/bin/seedctl", "--prefix", "/home/u/.venv"}
	text := CapabilityAbsent(Defaults(), "3.10.12", cmdline)

	assert.Contains(t, text, "apt install python3.10-venv")
	assert.Contains(t, text, "Failing command: /usr/bin/seedctl --prefix /home/u/.venv")
}

func TestVersionedRuntime(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		version string
		want    string
	}{
		{name: "prefix names the major", prefix: "python3", version: "3.10.12", want: "python3.10"},
		{name: "prefix without major", prefix: "pyrt", version: "3.12.1", want: "pyrt3.12"},
		{name: "empty version keeps prefix", prefix: "python3", version: "", want: "python3"},
		{name: "unparseable version used verbatim", prefix: "python3", version: "rolling", want: "python3.rolling"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, versionedRuntime(tc.prefix, tc.version))
		})
	}
}
