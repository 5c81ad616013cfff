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

package graph

import (
	"slices"
	"sync"

	"bennypowers.dev/fob/moduleid"
)

// ModuleGraph is a mapping from ModuleId to Module plus forward and
// reverse edges maintained in lockstep, per §4.F. It is read-concurrently,
// write-exclusively: writers hold the lock only long enough to insert a
// module or an edge, the way the teacher's DependencyGraph does for
// package-level edges.
type ModuleGraph struct {
	mu sync.RWMutex

	modules map[moduleid.ID]Module
	// forward[A] is the ordered list of B's that A depends on.
	forward map[moduleid.ID][]moduleid.ID
	// reverse[B] is the set of A's that depend on B.
	reverse map[moduleid.ID]map[moduleid.ID]bool

	entries   []moduleid.ID
	externals map[string]map[moduleid.ID]bool
}

// New creates an empty ModuleGraph.
func New() *ModuleGraph {
	return &ModuleGraph{
		modules:   make(map[moduleid.ID]Module),
		forward:   make(map[moduleid.ID][]moduleid.ID),
		reverse:   make(map[moduleid.ID]map[moduleid.ID]bool),
		externals: make(map[string]map[moduleid.ID]bool),
	}
}

// AddModule inserts or replaces the module at its own id. Idempotent: a
// later write for the same id simply replaces the earlier entry.
func (g *ModuleGraph) AddModule(m Module) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules[m.ID] = m
	if m.IsEntry {
		if !slices.Contains(g.entries, m.ID) {
			g.entries = append(g.entries, m.ID)
		}
	}
}

// AddDependency records that from depends on to, inserting both the
// forward and reverse edge. Self-loops are legal in JS (a module can
// dynamically import itself) and are not dropped.
func (g *ModuleGraph) AddDependency(from, to moduleid.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forward[from] = append(g.forward[from], to)
	if g.reverse[to] == nil {
		g.reverse[to] = make(map[moduleid.ID]bool)
	}
	g.reverse[to][from] = true
}

// AddExternal records that from imported the external specifier spec.
func (g *ModuleGraph) AddExternal(spec string, from moduleid.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.externals[spec] == nil {
		g.externals[spec] = make(map[moduleid.ID]bool)
	}
	g.externals[spec][from] = true
}

// Module returns the module at id and whether it was present.
func (g *ModuleGraph) Module(id moduleid.ID) (Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.modules[id]
	return m, ok
}

// Modules returns every module in the graph; order is unspecified.
func (g *ModuleGraph) Modules() []Module {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Module, 0, len(g.modules))
	for _, m := range g.modules {
		out = append(out, m)
	}
	return out
}

// Dependencies returns id's direct dependencies in insertion order.
func (g *ModuleGraph) Dependencies(id moduleid.ID) []moduleid.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	deps := g.forward[id]
	out := make([]moduleid.ID, len(deps))
	copy(out, deps)
	return out
}

// Dependents returns every module that directly depends on id.
func (g *ModuleGraph) Dependents(id moduleid.ID) []moduleid.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.reverse[id]
	out := make([]moduleid.ID, 0, len(set))
	for dep := range set {
		out = append(out, dep)
	}
	slices.Sort(out)
	return out
}

// TransitiveDependents returns every module that directly or indirectly
// depends on id, via breadth-first traversal of the reverse edges.
func (g *ModuleGraph) TransitiveDependents(id moduleid.ID) []moduleid.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[moduleid.ID]bool)
	queue := []moduleid.ID{id}
	var result []moduleid.ID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for dep := range g.reverse[current] {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}

	slices.Sort(result)
	return result
}

// EntryPoints returns the module ids flagged IsEntry.
func (g *ModuleGraph) EntryPoints() []moduleid.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]moduleid.ID, len(g.entries))
	copy(out, g.entries)
	return out
}

// ExternalDependencies returns aggregate external-specifier records with
// deduplicated, sorted importer lists.
func (g *ModuleGraph) ExternalDependencies() []ExternalDependency {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ExternalDependency, 0, len(g.externals))
	for spec, importers := range g.externals {
		ids := make([]moduleid.ID, 0, len(importers))
		for id := range importers {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		out = append(out, ExternalDependency{Specifier: spec, Importers: ids})
	}
	slices.SortFunc(out, func(a, b ExternalDependency) int {
		if a.Specifier < b.Specifier {
			return -1
		}
		if a.Specifier > b.Specifier {
			return 1
		}
		return 0
	})
	return out
}

// FromCollectedData builds forward and reverse edges from a walk's
// CollectionState in one pass, per §4.F.
func FromCollectedData(state CollectionState) *ModuleGraph {
	g := New()
	entrySet := make(map[moduleid.ID]bool, len(state.Entries))
	for _, id := range state.Entries {
		entrySet[id] = true
	}

	for _, m := range state.Modules {
		m.IsEntry = m.IsEntry || entrySet[m.ID]
		g.AddModule(m)
	}

	for _, m := range state.Modules {
		for _, imp := range m.Imports {
			if imp.ExternalPkg != "" {
				g.AddExternal(imp.ExternalPkg, m.ID)
				continue
			}
			if imp.Resolved.Empty() {
				continue
			}
			g.AddDependency(m.ID, imp.Resolved)
		}
	}

	g.mu.Lock()
	g.entries = append(g.entries[:0], state.Entries...)
	g.mu.Unlock()

	return g
}
