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

// Package analysis computes usage counts, dead-code findings, and
// aggregate statistics over an already-built graph.ModuleGraph, per
// §4.G. It only reads the graph (via its read-side methods); callers
// that want the computed counts persisted back onto Export records use
// ApplyUsageCounts explicitly.
package analysis

import (
	"sort"

	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/moduleid"
)

// UsageCounts maps a module id and export name to how many importing
// statements counted as a use of it.
type UsageCounts map[moduleid.ID]map[string]int

func (u UsageCounts) increment(id moduleid.ID, name string) {
	if name == "" {
		return
	}
	if u[id] == nil {
		u[id] = make(map[string]int)
	}
	u[id][name]++
}

// Get returns the recorded count for (id, name), or 0 if never recorded.
func (u UsageCounts) Get(id moduleid.ID, name string) int {
	return u[id][name]
}

// ComputeExportUsageCounts implements compute_export_usage_counts: a
// Namespace specifier increments every named export of the resolved
// target; a Named (or Default, mapped to the "default" name) specifier
// increments its matching export, forwarding through transparent
// "export * from" chains when the target only re-exports the name via a
// wildcard. Each import statement contributes at most once per target
// export, even if it names the same symbol twice.
func ComputeExportUsageCounts(g *graph.ModuleGraph) UsageCounts {
	counts := make(UsageCounts)

	for _, m := range g.Modules() {
		for _, imp := range m.Imports {
			if imp.Resolved.Empty() {
				continue
			}
			target, ok := g.Module(imp.Resolved)
			if !ok {
				continue
			}

			seen := make(map[string]bool)
			for _, spec := range imp.Specifiers {
				if spec.Kind == graph.SpecifierNamespace {
					for _, exp := range target.Exports {
						if exp.Name != "" {
							counts.increment(target.ID, exp.Name)
						}
					}
					continue
				}

				name := spec.Name
				if spec.Kind == graph.SpecifierDefault {
					name = "default"
				}
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true

				if owner, ok := findExportOwner(g, target.ID, name, make(map[moduleid.ID]bool)); ok {
					counts.increment(owner, name)
				}
			}
		}
	}

	return counts
}

// findExportOwner locates the module that actually declares name,
// forwarding through "export * from" sources when id's module only
// re-exports name via a wildcard that doesn't enumerate it by name.
func findExportOwner(g *graph.ModuleGraph, id moduleid.ID, name string, visited map[moduleid.ID]bool) (moduleid.ID, bool) {
	if visited[id] {
		return "", false
	}
	visited[id] = true

	m, ok := g.Module(id)
	if !ok {
		return "", false
	}
	for _, exp := range m.Exports {
		if exp.Name == name {
			return id, true
		}
	}

	for _, exp := range m.Exports {
		if exp.Kind != graph.ExportAll {
			continue
		}
		for _, imp := range m.Imports {
			if imp.Kind != graph.ImportReExport || imp.Specifier != exp.FromSource || imp.Resolved.Empty() {
				continue
			}
			if owner, ok := findExportOwner(g, imp.Resolved, name, visited); ok {
				return owner, true
			}
		}
	}
	return "", false
}

// ApplyUsageCounts writes computed counts back onto each module's Export
// records, re-inserting changed modules via AddModule (idempotent on id).
func ApplyUsageCounts(g *graph.ModuleGraph, counts UsageCounts) {
	for _, m := range g.Modules() {
		changed := false
		for i := range m.Exports {
			if n := counts.Get(m.ID, m.Exports[i].Name); n != m.Exports[i].UsageCount {
				m.Exports[i].UsageCount = n
				changed = true
			}
		}
		if changed {
			g.AddModule(m)
		}
	}
}

// UnusedExport names one export found to have zero uses.
type UnusedExport struct {
	Module moduleid.ID
	Name   string
}

// UnusedExports returns every export with usage_count == 0, excluding
// exports of entry modules (considered used by the outside world).
func UnusedExports(g *graph.ModuleGraph, counts UsageCounts) []UnusedExport {
	var out []UnusedExport
	for _, m := range g.Modules() {
		if m.IsEntry {
			continue
		}
		for _, exp := range m.Exports {
			if exp.Name == "" {
				continue
			}
			if counts.Get(m.ID, exp.Name) == 0 {
				out = append(out, UnusedExport{Module: m.ID, Name: exp.Name})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// UnreachableModules returns every module not reachable from an entry
// point by forward edges, excluding modules flagged has_side_effects
// (whose mere presence in the module set still matters).
func UnreachableModules(g *graph.ModuleGraph) []moduleid.ID {
	visited := make(map[moduleid.ID]bool)
	var queue []moduleid.ID
	for _, e := range g.EntryPoints() {
		if !visited[e] {
			visited[e] = true
			queue = append(queue, e)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range g.Dependencies(cur) {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var out []moduleid.ID
	for _, m := range g.Modules() {
		if visited[m.ID] || m.HasSideEffects {
			continue
		}
		out = append(out, m.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
