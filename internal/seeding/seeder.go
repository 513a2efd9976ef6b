// Package seeding owns the seeding operation for one environment.
//
// Ownership boundary:
// - gate-first entry point
// - bundle manifest parsing
// - copy-install of bundled bootstrap packages
//
// Seeding never touches the network; the bundle ships with the base
// installation.
package seeding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/seedgate/internal/advisory"
	"github.com/danmuck/seedgate/internal/envinfo"
	"github.com/danmuck/seedgate/internal/gate"
	"github.com/rs/zerolog/log"
)

var (
	ErrBundleMissing  = errors.New("seeding: bundle manifest missing")
	ErrEmptyBundle    = errors.New("seeding: bundle lists no packages")
	ErrOutsidePrefix  = errors.New("seeding: library root outside the environment prefix")
	ErrPackageEscapes = errors.New("seeding: package path escapes the bundle")
	ErrPackageMissing = errors.New("seeding: bundled package missing")
)

// ManifestName is the bundle manifest file; its presence is also the
// capability probe envbuild uses.
const ManifestName = "manifest.toml"

// Manifest lists the bootstrap packages a bundle carries.
type Manifest struct {
	Packages []string `toml:"packages"`
}

// Seeder installs the bundled bootstrap packages into an environment's
// library root, after the gate has permitted the operation.
type Seeder struct {
	Gate     *gate.Gate
	Advisory advisory.Params
	// Bundle is resolved against the descriptor's base prefix unless
	// absolute; LibRoot against the active prefix.
	Bundle  string
	LibRoot string
}

// Seed evaluates the gate against the descriptor, then copies every
// package the bundle manifest lists into the library root. A denied
// gate returns the *gate.Halt unchanged; everything else is an
// ordinary error.
func (s *Seeder) Seed(ctx context.Context, d envinfo.Descriptor) error {
	g := s.Gate
	if g == nil {
		g = gate.New()
	}
	if err := g.Enforce(d, advisory.SystemInstallation(s.Advisory)); err != nil {
		return err
	}

	bundle := resolve(s.Bundle, d.BasePrefix)
	libRoot := resolve(s.LibRoot, d.ActivePrefix)
	if !isWithin(libRoot, d.ActivePrefix) {
		return fmt.Errorf("%w: %s", ErrOutsidePrefix, libRoot)
	}

	manifest, err := loadManifest(filepath.Join(bundle, ManifestName))
	if err != nil {
		return err
	}
	if len(manifest.Packages) == 0 {
		return ErrEmptyBundle
	}

	if err := os.MkdirAll(libRoot, 0o755); err != nil {
		return err
	}
	for _, pkg := range manifest.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Clean(filepath.Join(bundle, pkg))
		if !isWithin(src, bundle) {
			return fmt.Errorf("%w: %q", ErrPackageEscapes, pkg)
		}
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrPackageMissing, pkg)
		} else if err != nil {
			return err
		}
		dest := filepath.Join(libRoot, filepath.Base(src))
		if err := copyTree(src, dest); err != nil {
			return fmt.Errorf("seeding %q: %w", pkg, err)
		}
		log.Info().Str("package", pkg).Str("dest", dest).Msg("seeded package")
	}
	return nil
}

func loadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, fmt.Errorf("%w: %s", ErrBundleMissing, path)
	} else if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("seeding: bad manifest (%s): %w", path, err)
	}
	return m, nil
}

func resolve(path, prefix string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(prefix, path))
}

func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func copyTree(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dest, info.Mode())
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
