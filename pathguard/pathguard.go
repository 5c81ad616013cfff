/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package pathguard canonicalizes and validates paths the resolver produces
// before they are allowed to become a module id, and enforces the asset
// size ceiling. It is the one place user-controlled path segments (".."
// chains in a specifier, a crafted alias target) are stopped from escaping
// the project root.
package pathguard

import (
	"path/filepath"
	"strings"

	"bennypowers.dev/fob/fs"
	"bennypowers.dev/fob/internal/diagnostic"
	"bennypowers.dev/fob/packagejson"
)

// DefaultAssetSizeLimit is the size ceiling for non-module assets, per §4.C.
const DefaultAssetSizeLimit = 100 << 20 // 100 MiB

// monorepoMarkers are the files whose presence in a directory marks it as
// a workspace root, per §4.C's "equivalent markers".
var monorepoMarkers = []string{"pnpm-workspace.yaml", "lerna.json"}

// NormalizeAndValidate canonicalizes path (resolving "." and ".." segments)
// and checks that the result lies within cwd or a discovered monorepo root.
// It does not resolve symlinks itself beyond what filepath.Clean does;
// runtime gives access to Stat for symlink-aware callers that need it.
func NormalizeAndValidate(runtime fs.FileSystem, path, cwd string) (string, error) {
	canonical := filepath.Clean(path)
	if !filepath.IsAbs(canonical) {
		canonical = filepath.Join(cwd, canonical)
	}
	canonical = filepath.Clean(canonical)

	root := cwd
	if within(canonical, cwd) {
		return canonical, nil
	}

	root = FindMonorepoRoot(runtime, cwd)
	if within(canonical, root) {
		return canonical, nil
	}

	return "", diagnostic.PathTraversal(canonical, cwd)
}

// within reports whether candidate is equal to, or a descendant of, root.
func within(candidate, root string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// FindMonorepoRoot walks up from startDir looking for a pnpm-workspace.yaml,
// a package.json with a workspaces field, or an equivalent marker. It
// returns startDir unchanged if none is found, mirroring the teacher's
// FindWorkspaceRoot fallback behavior.
func FindMonorepoRoot(runtime fs.FileSystem, startDir string) string {
	dir := startDir
	for {
		for _, marker := range monorepoMarkers {
			if runtime.Exists(filepath.Join(dir, marker)) {
				return dir
			}
		}

		pkgPath := filepath.Join(dir, "package.json")
		if pkg, err := packagejson.ParseFile(runtime, pkgPath); err == nil && pkg.HasWorkspaces() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// ValidateAssetSize opens path's metadata and fails with FileTooLarge when
// its size exceeds limit. A limit of 0 falls back to DefaultAssetSizeLimit.
func ValidateAssetSize(runtime fs.FileSystem, path string, limit int64) (int64, error) {
	if limit == 0 {
		limit = DefaultAssetSizeLimit
	}
	info, err := runtime.Stat(path)
	if err != nil {
		return 0, diagnostic.Runtime(path, err)
	}
	size := info.Size()
	if size > limit {
		return size, diagnostic.FileTooLarge(path, size, limit)
	}
	return size, nil
}
