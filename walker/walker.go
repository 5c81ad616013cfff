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

// Package walker implements the breadth-first dependency collection of
// §4.E: starting from a set of entry points, it resolves and parses every
// reachable module, enforcing the depth/module-count DoS limits, and
// produces a graph.CollectionState ready for graph.FromCollectedData.
package walker

import (
	"runtime"
	"sort"
	"sync"

	"bennypowers.dev/fob/fs"
	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/internal/diagnostic"
	"bennypowers.dev/fob/jsparser"
	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/pathguard"
	"bennypowers.dev/fob/resolver"
	"bennypowers.dev/fob/sourcetype"

	"lukechampine.com/blake3"
)

// Config carries the subset of core.Config the walker needs to run.
type Config struct {
	Entries             []string
	Cwd                 string
	Resolver            *resolver.Resolver
	FollowDynamicImports bool
	MaxDepth            int // 0 means unbounded
	MaxModules          int // 0 means unbounded
	// Parallel is the worker-pool size for the parse step of each BFS
	// level. 0 selects runtime.NumCPU(), mirroring the teacher's --jobs
	// default.
	Parallel int
	// VirtualEntries holds inline (name, content) entry pairs, per §6's
	// "Files (or virtual inline contents with synthesized virtual:… ids)".
	// Each name is classified by sourcetype.Classify for parser dispatch
	// exactly as a file path would be, but is never read through runtime
	// and never passes through the Path Guard. Virtual entries are only
	// a root of the walk; nothing resolves an import target onto one.
	VirtualEntries map[string][]byte
}

// pending is one item of BFS frontier work.
type pending struct {
	id      moduleid.ID
	path    string
	depth   int
	content []byte // set for virtual entries; parseOne skips ReadFile when non-nil
}

// parsed is the outcome of resolving+parsing a single pending module.
type parsed struct {
	item   pending
	module graph.Module
	err    *diagnostic.Error
}

// Walk runs the BFS collection described in §4.E and returns the resulting
// CollectionState, or a fatal *diagnostic.Error on an entry or import that
// the Path Guard rejects, a DoS-limit violation, or a resolver failure. A
// module that cannot be read or parsed is not fatal: it is recorded with
// only its id and path, and the walk goes on.
func Walk(cfg Config, runtime_ fs.FileSystem) (graph.CollectionState, *diagnostic.Error) {
	visited := make(map[moduleid.ID]bool)
	depthOf := make(map[moduleid.ID]int)
	state := graph.CollectionState{Unresolved: make(map[moduleid.ID][]string)}

	var frontier []pending
	for _, e := range cfg.Entries {
		canonical, err := pathguard.NormalizeAndValidate(runtime_, e, cfg.Cwd)
		if err != nil {
			return state, err.(*diagnostic.Error)
		}
		id := moduleid.FromPath(canonical)
		depthOf[id] = 0
		state.Entries = append(state.Entries, id)
		frontier = append(frontier, pending{id: id, path: canonical, depth: 0})
	}
	for name, content := range cfg.VirtualEntries {
		id := moduleid.Virtual(name)
		depthOf[id] = 0
		state.Entries = append(state.Entries, id)
		frontier = append(frontier, pending{id: id, path: name, depth: 0, content: content})
	}

	workers := cfg.Parallel
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	for len(frontier) > 0 {
		var level []pending
		for _, item := range frontier {
			if item.depth > 0 && cfg.MaxDepth > 0 && item.depth > cfg.MaxDepth {
				return state, diagnostic.MaxDepthExceeded(item.depth, cfg.MaxDepth)
			}
			if visited[item.id] {
				continue
			}
			level = append(level, item)
		}
		if len(level) == 0 {
			break
		}

		if cfg.MaxModules > 0 && len(visited)+len(level) > cfg.MaxModules {
			return state, diagnostic.TooManyModules(len(visited)+len(level), cfg.MaxModules)
		}

		results := runLevel(level, runtime_, workers)

		var next []pending
		for _, r := range results {
			if visited[r.item.id] {
				continue
			}
			visited[r.item.id] = true

			if r.err != nil {
				state.Modules = append(state.Modules, graph.Module{
					ID:   r.item.id,
					Path: r.item.path,
				})
				continue
			}

			r.module.IsEntry = depthOf[r.item.id] == 0 && isEntry(state.Entries, r.item.id)

			for i := range r.module.Imports {
				imp := &r.module.Imports[i]
				if imp.Kind == graph.ImportDynamic && !cfg.FollowDynamicImports {
					continue
				}

				outcome, rerr := cfg.Resolver.Resolve(imp.Specifier, r.item.path)
				if rerr != nil {
					// Path Guard rejections are fatal per §4.E; anything
					// else the resolver could return would be a bug.
					if derr, ok := rerr.(*diagnostic.Error); ok {
						return state, derr
					}
					return state, diagnostic.Runtime(r.item.path, rerr)
				}

				switch {
				case outcome.IsLocal():
					depID := outcome.Local
					imp.Resolved = depID
					if _, seen := depthOf[depID]; !seen && !visited[depID] {
						depthOf[depID] = r.item.depth + 1
						next = append(next, pending{
							id:    depID,
							path:  depID.String(),
							depth: r.item.depth + 1,
						})
					}
				case outcome.IsExternal():
					imp.ExternalPkg = outcome.External
				case outcome.IsUnresolved():
					state.Unresolved[r.item.id] = append(state.Unresolved[r.item.id], imp.Specifier)
				}
			}

			state.Modules = append(state.Modules, r.module)
		}
		frontier = next
	}

	sort.Slice(state.Modules, func(i, j int) bool {
		return state.Modules[i].ID.String() < state.Modules[j].ID.String()
	})
	return state, nil
}

func isEntry(entries []moduleid.ID, id moduleid.ID) bool {
	for _, e := range entries {
		if e == id {
			return true
		}
	}
	return false
}

// runLevel resolves+parses one BFS level's worth of modules concurrently,
// using a bounded jobs-channel worker pool sized by workers.
func runLevel(level []pending, runtime_ fs.FileSystem, workers int) []parsed {
	jobs := make(chan pending, len(level))
	results := make(chan parsed, len(level))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- parseOne(item, runtime_)
			}
		}()
	}
	for _, item := range level {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]parsed, 0, len(level))
	for r := range results {
		out = append(out, r)
	}
	return out
}

func parseOne(item pending, runtime_ fs.FileSystem) parsed {
	source := item.content
	if source == nil {
		var err error
		source, err = runtime_.ReadFile(item.path)
		if err != nil {
			return parsed{item: item, err: diagnostic.Runtime(item.path, err)}
		}
	}

	st := sourcetype.Classify(item.path)
	m, perr := jsparser.Parse(item.id, item.path, source, st, item.depth == 0)
	if perr != nil {
		return parsed{item: item, err: perr}
	}
	m.ContentHash = blake3.Sum256(source)
	return parsed{item: item, module: m}
}
