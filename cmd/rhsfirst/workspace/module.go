// Package workspace locates the module being rewritten and prepares
// `go build -overlay` inputs for it.
//
// Rewritten files never replace the user's sources. They are written as
// shadow files into a cache directory and mapped over the originals with an
// overlay file understood by the go command:
//
//	{"Replace": {"/src/app/main.go": "/src/app/.rhsfirst/main_3f2a9c01b7de.go"}}
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/mod/modfile"
)

// OverlayConstraint is the go version range whose go command accepts -overlay.
const OverlayConstraint = ">= 1.16"

// ErrNoModule is returned when no go.mod exists above the start directory.
var ErrNoModule = errors.New("no go.mod found")

// Module describes the module enclosing the sources being rewritten.
type Module struct {
	Root      string // Directory holding go.mod
	GoMod     string // Path to go.mod
	Path      string // Module path from the module directive
	GoVersion string // Version from the go directive (empty if absent)
}

// FindModule walks up from dir looking for go.mod and parses it.
//
// Returns:
//   - *Module: The enclosing module
//   - error: ErrNoModule when no go.mod is found, or a parse error
func FindModule(dir string) (*Module, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	goMod := findGoMod(dir)
	if goMod == "" {
		return nil, fmt.Errorf("%w in %s or any parent directory", ErrNoModule, dir)
	}
	return ParseModule(goMod)
}

// ParseModule reads a go.mod file.
func ParseModule(goModPath string) (*Module, error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", goModPath, err)
	}

	mf, err := modfile.ParseLax(goModPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", goModPath, err)
	}
	if mf.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", goModPath)
	}

	m := &Module{
		Root:  filepath.Dir(goModPath),
		GoMod: goModPath,
		Path:  mf.Module.Mod.Path,
	}
	if mf.Go != nil {
		m.GoVersion = mf.Go.Version
	}
	return m, nil
}

// CheckGoVersion reports whether the module's go directive allows
// `go build -overlay`. A module without a go directive is accepted.
func (m *Module) CheckGoVersion() error {
	if m.GoVersion == "" {
		return nil
	}
	return CheckGoVersion(m.GoVersion, OverlayConstraint)
}

// CheckGoVersion checks a go directive version ("1.21", "1.22.3",
// "1.21rc1") against a semver constraint. Pre-releases are checked as the
// release they precede.
func CheckGoVersion(goVersion, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(goSemver(goVersion))
	if err != nil {
		return fmt.Errorf("invalid go version %q: %w", goVersion, err)
	}
	core, err := v.SetPrerelease("")
	if err != nil {
		return fmt.Errorf("invalid go version %q: %w", goVersion, err)
	}
	if !c.Check(&core) {
		return fmt.Errorf("go %s does not satisfy %s (required for -overlay builds)", goVersion, constraint)
	}
	return nil
}

// goSemver converts a go directive version to semver: "1.21rc1" becomes
// "1.21.0-rc1" and "1.21" becomes "1.21.0".
func goSemver(v string) string {
	i := strings.IndexFunc(v, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	})
	release, pre := v, ""
	if i > 0 {
		release, pre = v[:i], v[i:]
	}
	if strings.Count(release, ".") == 1 {
		release += ".0"
	}
	if pre != "" {
		return release + "-" + pre
	}
	return release
}

// findGoMod returns the path of the nearest go.mod at or above startDir,
// or "" when there is none.
func findGoMod(startDir string) string {
	dir := startDir
	for {
		modPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modPath); err == nil {
			return modPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}
