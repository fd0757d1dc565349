package workspace

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// CollectFiles expands command-line arguments into absolute Go file paths.
//
// Arguments can be:
//   - .go files (used directly, test files included)
//   - directories or package patterns ("./...", ".", "example.com/pkg")
//
// Patterns are resolved with go/packages relative to dir. Test files are
// only included for patterns when tests is set. Files inside exclude (the
// cache directory, "" for none) or any directory named DefaultCacheDir are
// never returned, and packages below exclude are not loaded.
func CollectFiles(dir string, args []string, tests bool, exclude string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]bool)
	var files, patterns []string
	add := func(path string) {
		if !seen[path] && !isShadow(path) && !within(path, exclude) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		if !strings.HasSuffix(arg, ".go") {
			patterns = append(patterns, arg)
			continue
		}
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		add(filepath.Clean(path))
	}

	if len(patterns) > 0 {
		pkgFiles, err := loadPackageFiles(dir, patterns, tests, importPathOf(exclude))
		if err != nil {
			return nil, err
		}
		for _, f := range pkgFiles {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// loadPackageFiles returns the Go files of the packages matching patterns,
// skipping packages at or below the import path skip.
func loadPackageFiles(dir string, patterns []string, tests bool, skip string) ([]string, error) {
	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles,
		Dir:   dir,
		Tests: tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %s: %w", strings.Join(patterns, " "), err)
	}

	var errs []error
	var files []string
	for _, p := range pkgs {
		if strings.HasSuffix(p.ID, ".test") {
			// Generated test main package.
			continue
		}
		if below(p.PkgPath, skip) || below(p.ID, skip) {
			continue
		}
		for _, e := range p.Errors {
			errs = append(errs, fmt.Errorf("%s: %s", p.PkgPath, e.Msg))
		}
		for _, f := range p.GoFiles {
			if strings.HasSuffix(f, ".go") {
				files = append(files, f)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return files, nil
}

// TypedFile is a parsed source file with the type information of its
// package.
type TypedFile struct {
	Fset   *token.FileSet
	Syntax *ast.File
	Types  *types.Package
	Info   *types.Info
}

// LoadTypes type-checks the packages holding files, relative to dir.
//
// The result maps absolute file paths to their typed syntax. Files whose
// package cannot be loaded, or has errors other than type errors, are
// missing from it; callers fall back to checking those files alone.
func LoadTypes(dir string, files []string) (map[string]*TypedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}

	dirs := make(map[string]bool)
	want := make(map[string]bool)
	tests := false
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
		want[f] = true
		tests = tests || strings.HasSuffix(f, "_test.go")
	}
	patterns := make([]string, 0, len(dirs))
	for d := range dirs {
		patterns = append(patterns, d)
	}
	sort.Strings(patterns)

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:   dir,
		Tests: tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %s: %w", strings.Join(patterns, " "), err)
	}

	typed := make(map[string]*TypedFile)
	for _, p := range pkgs {
		if strings.HasSuffix(p.ID, ".test") || !typeErrorsOnly(p) || p.Types == nil || p.TypesInfo == nil {
			continue
		}
		for i, f := range p.CompiledGoFiles {
			if i >= len(p.Syntax) || !want[f] || typed[f] != nil {
				continue
			}
			typed[f] = &TypedFile{Fset: p.Fset, Syntax: p.Syntax[i], Types: p.Types, Info: p.TypesInfo}
		}
	}
	return typed, nil
}

// typeErrorsOnly reports whether every error of p came from the type
// checker, so its syntax and partial type information are usable.
func typeErrorsOnly(p *packages.Package) bool {
	for _, e := range p.Errors {
		if e.Kind != packages.TypeError {
			return false
		}
	}
	return true
}

// isShadow reports whether path lies in a directory named DefaultCacheDir.
func isShadow(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == DefaultCacheDir {
			return true
		}
	}
	return false
}

// within reports whether path lies in directory dir.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// below reports whether import path p is root or inside it.
func below(p, root string) bool {
	return root != "" && (p == root || strings.HasPrefix(p, root+"/"))
}

// importPathOf returns the import path dir would have in its enclosing
// module, or "" when it is in none.
func importPathOf(dir string) string {
	if dir == "" {
		return ""
	}
	goMod := findGoMod(dir)
	if goMod == "" {
		return ""
	}
	m, err := ParseModule(goMod)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(m.Root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return path.Join(m.Path, filepath.ToSlash(rel))
}
