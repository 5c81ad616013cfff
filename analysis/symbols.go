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

package analysis

import (
	"sort"

	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/moduleid"
)

// ClassMemberGroup collects the unused private members of one class.
type ClassMemberGroup struct {
	Class   string
	Members []graph.Declaration
}

// EnumMemberGroup collects the unused members of one enum.
type EnumMemberGroup struct {
	Enum    string
	Members []graph.Declaration
}

// SymbolReport is the per-module symbol-level dead-code view, per §4.G.
type SymbolReport struct {
	UnusedPrivateMembers    map[moduleid.ID][]ClassMemberGroup
	UnusedEnumMembers       map[moduleid.ID][]EnumMemberGroup
	UnusedLocalDeclarations map[moduleid.ID][]graph.Declaration
}

// AnalyzeSymbols walks every module's SymbolTable, grouping unused
// private class members by class, unused enum members by enum, and
// collecting unused top-level declarations that were never exported.
func AnalyzeSymbols(g *graph.ModuleGraph) SymbolReport {
	report := SymbolReport{
		UnusedPrivateMembers:    make(map[moduleid.ID][]ClassMemberGroup),
		UnusedEnumMembers:       make(map[moduleid.ID][]EnumMemberGroup),
		UnusedLocalDeclarations: make(map[moduleid.ID][]graph.Declaration),
	}

	for _, m := range g.Modules() {
		if m.Symbols == nil {
			continue
		}

		classOrder := []string{}
		classMembers := make(map[string][]graph.Declaration)
		enumOrder := []string{}
		enumMembers := make(map[string][]graph.Declaration)

		for _, d := range m.Symbols.Declarations {
			switch d.Kind {
			case graph.DeclClassMember:
				if d.Visibility != graph.VisibilityPrivate || d.RefCount != 0 {
					continue
				}
				if _, seen := classMembers[d.ClassName]; !seen {
					classOrder = append(classOrder, d.ClassName)
				}
				classMembers[d.ClassName] = append(classMembers[d.ClassName], d)
			case graph.DeclEnumMember:
				if d.RefCount != 0 {
					continue
				}
				if _, seen := enumMembers[d.EnumName]; !seen {
					enumOrder = append(enumOrder, d.EnumName)
				}
				enumMembers[d.EnumName] = append(enumMembers[d.EnumName], d)
			case graph.DeclVariable, graph.DeclFunction, graph.DeclClass:
				if !d.Exported && d.RefCount == 0 {
					report.UnusedLocalDeclarations[m.ID] = append(report.UnusedLocalDeclarations[m.ID], d)
				}
			}
		}

		sort.Strings(classOrder)
		for _, class := range classOrder {
			report.UnusedPrivateMembers[m.ID] = append(report.UnusedPrivateMembers[m.ID], ClassMemberGroup{
				Class:   class,
				Members: classMembers[class],
			})
		}

		sort.Strings(enumOrder)
		for _, enum := range enumOrder {
			report.UnusedEnumMembers[m.ID] = append(report.UnusedEnumMembers[m.ID], EnumMemberGroup{
				Enum:    enum,
				Members: enumMembers[enum],
			})
		}
	}

	return report
}

// Stats is the compact statistics record §4.G asks for.
type Stats struct {
	ModuleCount                 int
	EntryCount                  int
	ExternalCount               int
	EdgeCount                   int
	UnusedExportCount           int
	UnusedPrivateMemberCount    int
	UnusedEnumMemberCount       int
	UnusedLocalDeclarationCount int
}

// ComputeStatistics aggregates the graph and dead-code findings into a
// single Stats record.
func ComputeStatistics(g *graph.ModuleGraph, unused []UnusedExport, symbols SymbolReport) Stats {
	modules := g.Modules()

	edgeCount := 0
	for _, m := range modules {
		edgeCount += len(g.Dependencies(m.ID))
	}

	privateCount := 0
	for _, groups := range symbols.UnusedPrivateMembers {
		for _, group := range groups {
			privateCount += len(group.Members)
		}
	}

	enumCount := 0
	for _, groups := range symbols.UnusedEnumMembers {
		for _, group := range groups {
			enumCount += len(group.Members)
		}
	}

	localCount := 0
	for _, decls := range symbols.UnusedLocalDeclarations {
		localCount += len(decls)
	}

	return Stats{
		ModuleCount:                 len(modules),
		EntryCount:                  len(g.EntryPoints()),
		ExternalCount:               len(g.ExternalDependencies()),
		EdgeCount:                   edgeCount,
		UnusedExportCount:           len(unused),
		UnusedPrivateMemberCount:    privateCount,
		UnusedEnumMemberCount:       enumCount,
		UnusedLocalDeclarationCount: localCount,
	}
}
