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

// Package resolver turns an import specifier plus the importing file's
// path into a Local, External, or Unresolved outcome, per §4.B. It never
// decides what to do with the outcome — the walker consumes Local results
// to extend the BFS, and records External/Unresolved as graph metadata.
package resolver

import (
	"path/filepath"
	"strings"

	"bennypowers.dev/fob/fs"
	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/packagejson"
	"bennypowers.dev/fob/pathguard"
)

// extensions is the fixed, TypeScript-favoring probe order from §4.B step 5.
var extensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".json"}

// Outcome is the resolver's result, as the tagged union the spec describes.
type Outcome struct {
	Local      moduleid.ID
	External   string
	Unresolved string
}

// IsLocal reports whether the outcome is a filesystem resolution.
func (o Outcome) IsLocal() bool { return o.Local != "" }

// IsExternal reports whether the outcome matched the external policy.
func (o Outcome) IsExternal() bool { return o.External != "" }

// IsUnresolved reports whether nothing could be found for the specifier.
func (o Outcome) IsUnresolved() bool { return o.Unresolved != "" }

// Resolver is an immutable, chained-builder configuration for Resolve,
// mirroring the teacher's Resolver.With* copy-on-write style.
type Resolver struct {
	runtime     fs.FileSystem
	cwd         string
	externals   []string
	pathAliases map[string]string
	conditions  []string
	pkgCache    packagejson.Cache
}

// New creates a Resolver rooted at cwd with no externals or aliases. All
// chained copies share one pkgCache, so a monorepo directory's
// package.json is parsed once per Resolver lineage, however many times
// probePackageExports walks back over it.
func New(runtime fs.FileSystem, cwd string) *Resolver {
	return &Resolver{runtime: runtime, cwd: cwd, pkgCache: packagejson.NewMemoryCache()}
}

// WithExternals returns a new Resolver configured with the given external
// specifiers/prefix families.
func (r *Resolver) WithExternals(externals []string) *Resolver {
	return &Resolver{
		runtime:     r.runtime,
		cwd:         r.cwd,
		externals:   externals,
		pathAliases: r.pathAliases,
		conditions:  r.conditions,
		pkgCache:    r.pkgCache,
	}
}

// WithPathAliases returns a new Resolver configured with the given alias
// substitution table.
func (r *Resolver) WithPathAliases(aliases map[string]string) *Resolver {
	return &Resolver{
		runtime:     r.runtime,
		cwd:         r.cwd,
		externals:   r.externals,
		pathAliases: aliases,
		conditions:  r.conditions,
		pkgCache:    r.pkgCache,
	}
}

// WithConditions returns a new Resolver configured with the export
// condition names tried, in order, against package.json "exports" maps.
func (r *Resolver) WithConditions(conditions []string) *Resolver {
	return &Resolver{
		runtime:     r.runtime,
		cwd:         r.cwd,
		externals:   r.externals,
		pathAliases: r.pathAliases,
		conditions:  conditions,
		pkgCache:    r.pkgCache,
	}
}

// Resolve implements the §4.B decision order.
func (r *Resolver) Resolve(specifier, fromPath string) (Outcome, error) {
	if pkg, ok := r.externalMatch(specifier); ok {
		return Outcome{External: pkg}, nil
	}

	if isBareSpecifier(specifier, r.pathAliases) {
		return Outcome{External: specifier}, nil
	}

	candidate := specifier
	if target, ok := r.substituteAlias(specifier); ok {
		candidate = target
	} else if strings.HasPrefix(specifier, ".") {
		candidate = filepath.Join(filepath.Dir(fromPath), specifier)
	}
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(r.cwd, candidate)
	}
	candidate = filepath.Clean(candidate)

	found, ok, err := r.probe(candidate)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Unresolved: specifier}, nil
	}

	canonical, err := pathguard.NormalizeAndValidate(r.runtime, found, r.cwd)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Local: moduleid.FromPath(canonical)}, nil
}

// externalMatch checks the external pre-check from step 1: an exact match
// or a prefix family P where specifier == P or specifier starts with P/.
func (r *Resolver) externalMatch(specifier string) (string, bool) {
	for _, p := range r.externals {
		if specifier == p || strings.HasPrefix(specifier, p+"/") {
			return p, true
		}
	}
	return "", false
}

// isBareSpecifier implements step 2: not relative, not absolute, and not
// matching a configured alias key.
func isBareSpecifier(specifier string, aliases map[string]string) bool {
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return false
	}
	for key := range aliases {
		if specifier == key || strings.HasPrefix(specifier, key+"/") {
			return false
		}
	}
	return true
}

// substituteAlias implements step 3.
func (r *Resolver) substituteAlias(specifier string) (string, bool) {
	for key, target := range r.pathAliases {
		if specifier == key {
			return target, true
		}
		if strings.HasPrefix(specifier, key+"/") {
			return target + specifier[len(key):], true
		}
	}
	return "", false
}

// probe implements step 5's extension probing, with the package.json
// exports-aware directory-probe supplement: when a directory candidate
// carries a package.json with an exports map, that map is consulted
// before falling back to index.<ext> probing.
func (r *Resolver) probe(candidate string) (string, bool, error) {
	if info, err := r.runtime.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, true, nil
	}

	for _, ext := range extensions {
		withExt := candidate + ext
		if info, err := r.runtime.Stat(withExt); err == nil && !info.IsDir() {
			return withExt, true, nil
		}
	}

	if info, err := r.runtime.Stat(candidate); err == nil && info.IsDir() {
		if target, ok := r.probePackageExports(candidate); ok {
			return target, true, nil
		}
		for _, ext := range extensions {
			withExt := filepath.Join(candidate, "index"+ext)
			if info, err := r.runtime.Stat(withExt); err == nil && !info.IsDir() {
				return withExt, true, nil
			}
		}
	}

	return "", false, nil
}

// probePackageExports consults dir/package.json's "exports" map for the
// root subpath ("."), honoring the configured condition names. Parsed
// package.json files are cached by path, since a BFS walk probes the
// same monorepo package directory once per importing module.
func (r *Resolver) probePackageExports(dir string) (string, bool) {
	pkgPath := filepath.Join(dir, "package.json")
	pkg, err := r.pkgCache.GetOrLoad(pkgPath, func() (*packagejson.PackageJSON, error) {
		return packagejson.ParseFile(r.runtime, pkgPath)
	})
	if err != nil || pkg.Exports == nil {
		return "", false
	}
	opts := &packagejson.ResolveOptions{Conditions: r.conditions}
	target, err := pkg.ResolveExport(".", opts)
	if err != nil || target == "" {
		return "", false
	}
	return filepath.Join(dir, target), true
}
