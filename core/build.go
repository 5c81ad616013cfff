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

package core

import (
	"fmt"
	"os"
	"strings"

	"bennypowers.dev/fob/analysis"
	"bennypowers.dev/fob/cache"
	"bennypowers.dev/fob/fs"
	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/internal/diagnostic"
	"bennypowers.dev/fob/internal/version"
	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/resolver"
	"bennypowers.dev/fob/walker"
)

// Build runs the whole pipeline described by the data-flow diagram in §2:
// Walker (Resolver ⇄ Path Guard, Parser ⇄ Extractors) → CollectionState →
// Module Graph → Usage Analysis → Incremental Cache. Every fatal error the
// pipeline can produce (§7's "Input errors"/"Walk errors") short-circuits
// and is returned as the sole result; cache errors never reach this
// return path: write failures are logged as warnings, and a missing,
// unreadable, or invalid cache is treated as a cold cache without a log
// line.
func Build(cfg *Config, runtime fs.FileSystem) (*Result, *diagnostic.Error) {
	if len(cfg.entries) == 0 && len(cfg.virtualEntries) == 0 {
		return nil, diagnostic.NoEntries()
	}

	engineVersion := cfg.engineVersion
	if engineVersion == "" {
		engineVersion = version.GetVersion()
	}
	conditions := cfg.resolvedConditions()

	res := resolver.New(runtime, cfg.cwd).
		WithExternals(cfg.external).
		WithPathAliases(cfg.pathAliases).
		WithConditions(conditions)

	walkCfg := walker.Config{
		Entries:              cfg.entries,
		Cwd:                  cfg.cwd,
		Resolver:             res,
		FollowDynamicImports: cfg.followDynamicImports,
		MaxDepth:             cfg.maxDepth,
		MaxModules:           cfg.maxModules,
		Parallel:             cfg.parallel,
		VirtualEntries:       cfg.virtualEntries,
	}

	state, werr := walker.Walk(walkCfg, runtime)
	if werr != nil {
		return nil, werr
	}

	if cfg.requireExplicitExternals {
		if derr := validateExplicitExternals(state, cfg.external); derr != nil {
			return nil, derr
		}
	}

	g := graph.FromCollectedData(state)

	counts := analysis.ComputeExportUsageCounts(g)
	analysis.ApplyUsageCounts(g, counts)
	unused := analysis.UnusedExports(g, counts)
	unreachable := analysis.UnreachableModules(g)
	symbols := analysis.AnalyzeSymbols(g)
	stats := analysis.ComputeStatistics(g, unused, symbols)

	result := &Result{
		Graph:              g,
		UsageCounts:        counts,
		UnusedExports:      unused,
		UnreachableModules: unreachable,
		Symbols:            symbols,
		Stats:              stats,
		UnresolvedImports:  state.Unresolved,
	}

	keyInput := cache.KeyInput{
		EngineVersion: engineVersion,
		Entries:       entryHashes(g, state.Entries),
		Options: cache.BuildOptions{
			Format:                 cfg.format,
			Platform:               cfg.platform,
			SourcemapMode:          cfg.sourcemapMode,
			MinifyLevel:            cfg.minifyLevel,
			External:               cfg.external,
			PathAliases:            cfg.pathAliases,
			Conditions:             conditions,
			CodeSplittingThreshold: cfg.codeSplittingThreshold,
		},
		VirtualFiles: cfg.virtualEntries,
		Env:          cfg.env,
	}
	result.CacheKey = cache.BuildKey(keyInput)

	if cfg.cacheDir != "" {
		applyCache(runtime, cfg.cacheDir, engineVersion, state.Entries, g, result)
	}

	return result, nil
}

// validateExplicitExternals enforces the §9 host policy: with
// RequireExplicitExternals on, a bare specifier not covered by the
// configured external list is promoted from a silent External resolution
// to a fatal Validation diagnostic.
func validateExplicitExternals(state graph.CollectionState, external []string) *diagnostic.Error {
	for _, m := range state.Modules {
		for _, imp := range m.Imports {
			if imp.ExternalPkg == "" {
				continue
			}
			if isExplicitlyExternal(imp.ExternalPkg, external) {
				continue
			}
			return &diagnostic.Error{
				Tag:     diagnostic.TagValidation,
				Message: fmt.Sprintf("specifier %q resolved as external but is not in the configured external list", imp.ExternalPkg),
				File:    m.Path,
			}
		}
	}
	return nil
}

// isExplicitlyExternal replays the Resolver's own external pre-check
// (§4.B step 1) to decide whether a given external outcome was actually
// covered by the configured list, as opposed to falling out of the bare-
// specifier shortcut (step 2).
func isExplicitlyExternal(spec string, external []string) bool {
	for _, p := range external {
		if spec == p || strings.HasPrefix(spec, p+"/") {
			return true
		}
	}
	return false
}

// entryHashes looks up each entry's content hash in g, for CacheKey's
// "sorted entry specifiers with their file-content hashes".
func entryHashes(g *graph.ModuleGraph, entries []moduleid.ID) []cache.Entry {
	out := make([]cache.Entry, 0, len(entries))
	for _, id := range entries {
		m, ok := g.Module(id)
		if !ok {
			continue
		}
		out = append(out, cache.Entry{Specifier: id.String(), ContentHash: m.ContentHash})
	}
	return out
}

// applyCache runs the §4.H state machine's read side (LoadCache → Validate
// → DetectChanges → ComputeAffected) against the graph Build just produced,
// then unconditionally persists the new state (WriteCache), since a fresh
// walk already re-parsed every module this call needed. No failure here is
// returned to the caller: save, store, and serialization failures are
// logged as warnings, while a cache that fails to load is silently treated
// as absent.
func applyCache(runtime fs.FileSystem, dir, engineVersion string, entries []moduleid.ID, g *graph.ModuleGraph, result *Result) {
	currentHashes := make(cache.ContentHashes)
	for _, m := range g.Modules() {
		if m.ID.IsVirtual() {
			continue
		}
		currentHashes[m.ID] = m.ContentHash
	}

	if ic, ok := cache.Load(runtime, dir); ok && ic.Valid(cache.FormatVersion, engineVersion, entries) {
		changes := cache.DetectChanges(ic.FileHashes, currentHashes)
		direct := changes.Direct()
		result.ChangeSet = changes
		if len(direct) == 0 {
			result.FromCache = true
		} else {
			result.Affected = cache.AffectedSet(g, direct)
		}
	}

	newIC := &cache.IncrementalCache{
		FormatVersion: cache.FormatVersion,
		EngineVersion: engineVersion,
		Graph:         g,
		FileHashes:    currentHashes,
	}
	if err := cache.Save(runtime, dir, newIC); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write incremental cache: %v\n", err)
	}

	store, err := cache.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open cache store: %v\n", err)
		return
	}
	defer store.Close()

	graphBytes, err := g.ToBytes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to serialize graph for cache: %v\n", err)
		return
	}
	if err := store.PutBuild(result.CacheKey, graphBytes); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write cache entry: %v\n", err)
	}
}
