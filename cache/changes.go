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

package cache

import (
	"sort"

	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/moduleid"
)

// ChangeSet is the direct (non-transitive) result of comparing a stored
// file-hash map against freshly computed content hashes, per §4.H's
// "change detection".
type ChangeSet struct {
	Added    []moduleid.ID
	Modified []moduleid.ID
	Removed  []moduleid.ID
}

// Direct returns the union of Added, Modified, and Removed — the initial
// direct-change set that seeds the affected-set computation.
func (cs ChangeSet) Direct() []moduleid.ID {
	out := make([]moduleid.ID, 0, len(cs.Added)+len(cs.Modified)+len(cs.Removed))
	out = append(out, cs.Added...)
	out = append(out, cs.Modified...)
	out = append(out, cs.Removed...)
	return out
}

// DetectChanges compares stored (from a loaded IncrementalCache) against
// current (freshly computed over the module set a walk just observed).
func DetectChanges(stored, current ContentHashes) ChangeSet {
	var cs ChangeSet
	for id, hash := range current {
		old, ok := stored[id]
		if !ok {
			cs.Added = append(cs.Added, id)
			continue
		}
		if old != hash {
			cs.Modified = append(cs.Modified, id)
		}
	}
	for id := range stored {
		if _, ok := current[id]; !ok {
			cs.Removed = append(cs.Removed, id)
		}
	}

	sort.Slice(cs.Added, func(i, j int) bool { return cs.Added[i] < cs.Added[j] })
	sort.Slice(cs.Modified, func(i, j int) bool { return cs.Modified[i] < cs.Modified[j] })
	sort.Slice(cs.Removed, func(i, j int) bool { return cs.Removed[i] < cs.Removed[j] })
	return cs
}

// AffectedSet computes the transitive closure over reverse edges from the
// direct-change set: every module that is itself changed, or transitively
// depends on a changed module, must have its parse or graph contribution
// redone.
func AffectedSet(g *graph.ModuleGraph, direct []moduleid.ID) []moduleid.ID {
	affected := make(map[moduleid.ID]bool, len(direct))
	for _, id := range direct {
		affected[id] = true
		for _, dep := range g.TransitiveDependents(id) {
			affected[dep] = true
		}
	}

	out := make([]moduleid.ID, 0, len(affected))
	for id := range affected {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
