package assign

import "github.com/kolkov/rhsfirst/internal/rewrite"

// Version information for rhsfirst.
const (
	// Version is the current version of the rewriter.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info describes the rewriter.
type Info struct {
	// Version is the rewriter version string.
	Version string

	// Directive is the annotation that enables the rewrite.
	Directive string

	// TempPrefix starts every synthesized temporary.
	TempPrefix string
}

// GetInfo returns information about the rewriter.
//
// Example:
//
//	info := assign.GetInfo()
//	fmt.Printf("rhsfirst %s (%s)\n", info.Version, info.Directive)
func GetInfo() Info {
	return Info{
		Version:    Version,
		Directive:  Directive,
		TempPrefix: rewrite.TempPrefix,
	}
}
