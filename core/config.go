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

// Package core is the builder façade wiring the Resolver, Path Guard,
// Parser, Graph Walker, Module Graph, Usage Analysis, and Incremental
// Cache into the single entry point described by §6: a chained-builder
// Config plus a Build function that returns a Result or a fatal
// *diagnostic.Error.
package core

import "bennypowers.dev/fob/packagejson"

// Config is the builder-style configuration object of §6. Zero value is
// usable — a Config built with only New(cwd) has no entries and will fail
// Build with NoEntries, exactly as an empty build request should.
type Config struct {
	entries        []string
	virtualEntries map[string][]byte

	external                 []string
	pathAliases              map[string]string
	conditions               []string
	requireExplicitExternals bool
	followDynamicImports     bool

	maxDepth   int
	maxModules int
	parallel   int

	cwd           string
	cacheDir      string
	engineVersion string

	// Opaque-to-core bundler options. All but globals are carried into the
	// cache key; globals is stored but never hashed.
	format                 string
	platform               string
	sourcemapMode          string
	minifyLevel            int
	globals                map[string]string
	codeSplittingThreshold int
	env                    map[string]string
}

// New creates a Config rooted at cwd with every option at its zero value.
func New(cwd string) *Config {
	return &Config{cwd: cwd}
}

func (c *Config) clone() *Config {
	cp := *c
	return &cp
}

// WithEntries sets the file-path entry points to walk from.
func (c *Config) WithEntries(entries ...string) *Config {
	cp := c.clone()
	cp.entries = entries
	return cp
}

// WithVirtualEntries sets inline (name, content) entry pairs, synthesized
// into `virtual:…` ids per §3/§6.
func (c *Config) WithVirtualEntries(virtual map[string][]byte) *Config {
	cp := c.clone()
	cp.virtualEntries = virtual
	return cp
}

// WithExternal sets the specifiers/prefix families the Resolver treats as
// non-bundled.
func (c *Config) WithExternal(external []string) *Config {
	cp := c.clone()
	cp.external = external
	return cp
}

// WithPathAliases sets the alias substitution table applied before
// relative resolution.
func (c *Config) WithPathAliases(aliases map[string]string) *Config {
	cp := c.clone()
	cp.pathAliases = aliases
	return cp
}

// WithConditions sets the package.json "exports" condition names tried, in
// order. Defaults to packagejson.DefaultConditions when left unset.
func (c *Config) WithConditions(conditions []string) *Config {
	cp := c.clone()
	cp.conditions = conditions
	return cp
}

// WithRequireExplicitExternals sets the §9 open-question host policy: when
// true, a bare specifier not covered by WithExternal is a fatal
// Validation diagnostic rather than a silent External resolution.
func (c *Config) WithRequireExplicitExternals(require bool) *Config {
	cp := c.clone()
	cp.requireExplicitExternals = require
	return cp
}

// WithFollowDynamicImports sets whether import() edges extend the walk.
func (c *Config) WithFollowDynamicImports(follow bool) *Config {
	cp := c.clone()
	cp.followDynamicImports = follow
	return cp
}

// WithMaxDepth sets the BFS depth DoS bound. 0 means unbounded.
func (c *Config) WithMaxDepth(max int) *Config {
	cp := c.clone()
	cp.maxDepth = max
	return cp
}

// WithMaxModules sets the total-module-count DoS bound. 0 means unbounded.
func (c *Config) WithMaxModules(max int) *Config {
	cp := c.clone()
	cp.maxModules = max
	return cp
}

// WithParallel sets the walker's per-level worker-pool size. 0 selects
// runtime.NumCPU().
func (c *Config) WithParallel(n int) *Config {
	cp := c.clone()
	cp.parallel = n
	return cp
}

// WithCacheDir enables incremental caching at dir. An empty dir (the
// default) disables caching entirely.
func (c *Config) WithCacheDir(dir string) *Config {
	cp := c.clone()
	cp.cacheDir = dir
	return cp
}

// WithEngineVersion sets the version string used in cache-key computation
// and cache-validity checks.
func (c *Config) WithEngineVersion(version string) *Config {
	cp := c.clone()
	cp.engineVersion = version
	return cp
}

// BundlerOptions groups the bundler-facing options core never interprets.
// Format, Platform, SourcemapMode, MinifyLevel, and CodeSplittingThreshold
// are folded into cache.BuildOptions and Env into cache.KeyInput.Env;
// Globals is kept on the Config but does not contribute to the cache key.
type BundlerOptions struct {
	Format                 string
	Platform               string
	SourcemapMode          string
	MinifyLevel            int
	Globals                map[string]string
	CodeSplittingThreshold int
	Env                    map[string]string
}

// WithBundlerOptions sets the grouped opaque bundler-facing options.
func (c *Config) WithBundlerOptions(opts BundlerOptions) *Config {
	cp := c.clone()
	cp.format = opts.Format
	cp.platform = opts.Platform
	cp.sourcemapMode = opts.SourcemapMode
	cp.minifyLevel = opts.MinifyLevel
	cp.globals = opts.Globals
	cp.codeSplittingThreshold = opts.CodeSplittingThreshold
	cp.env = opts.Env
	return cp
}

func (c *Config) resolvedConditions() []string {
	if len(c.conditions) > 0 {
		return c.conditions
	}
	return packagejson.DefaultConditions
}
