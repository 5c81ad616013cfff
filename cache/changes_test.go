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
	"testing"

	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/moduleid"
)

func TestDetectChangesAddedModifiedRemoved(t *testing.T) {
	a := moduleid.FromPath("/repo/a.ts")
	b := moduleid.FromPath("/repo/b.ts")
	c := moduleid.FromPath("/repo/c.ts")

	stored := ContentHashes{a: {1}, b: {2}}
	current := ContentHashes{a: {1}, b: {9}, c: {3}}

	cs := DetectChanges(stored, current)
	if len(cs.Added) != 1 || cs.Added[0] != c {
		t.Fatalf("expected c added, got %+v", cs.Added)
	}
	if len(cs.Modified) != 1 || cs.Modified[0] != b {
		t.Fatalf("expected b modified, got %+v", cs.Modified)
	}
	if len(cs.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %+v", cs.Removed)
	}
}

func TestDetectChangesRemoved(t *testing.T) {
	a := moduleid.FromPath("/repo/a.ts")
	gone := moduleid.FromPath("/repo/gone.ts")

	stored := ContentHashes{a: {1}, gone: {2}}
	current := ContentHashes{a: {1}}

	cs := DetectChanges(stored, current)
	if len(cs.Removed) != 1 || cs.Removed[0] != gone {
		t.Fatalf("expected gone.ts removed, got %+v", cs.Removed)
	}
}

func TestAffectedSetFollowsReverseClosure(t *testing.T) {
	// a imports b imports c, per spec's S6 scenario.
	a := moduleid.FromPath("/repo/a.ts")
	b := moduleid.FromPath("/repo/b.ts")
	c := moduleid.FromPath("/repo/c.ts")

	g := graph.New()
	g.AddModule(graph.Module{ID: a, IsEntry: true})
	g.AddModule(graph.Module{ID: b})
	g.AddModule(graph.Module{ID: c})
	g.AddDependency(a, b)
	g.AddDependency(b, c)

	affected := AffectedSet(g, []moduleid.ID{c})
	want := map[moduleid.ID]bool{a: true, b: true, c: true}
	if len(affected) != len(want) {
		t.Fatalf("expected %d affected modules, got %+v", len(want), affected)
	}
	for _, id := range affected {
		if !want[id] {
			t.Fatalf("unexpected module in affected set: %v", id)
		}
	}
}

func TestAffectedSetDoesNotOverreach(t *testing.T) {
	a := moduleid.FromPath("/repo/a.ts")
	b := moduleid.FromPath("/repo/b.ts")
	unrelated := moduleid.FromPath("/repo/unrelated.ts")

	g := graph.New()
	g.AddModule(graph.Module{ID: a, IsEntry: true})
	g.AddModule(graph.Module{ID: b})
	g.AddModule(graph.Module{ID: unrelated, IsEntry: true})
	g.AddDependency(a, b)

	affected := AffectedSet(g, []moduleid.ID{b})
	for _, id := range affected {
		if id == unrelated {
			t.Fatal("unrelated entry should not be pulled into the affected set")
		}
	}
}
