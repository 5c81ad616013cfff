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
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/sourcetype"
)

// SerializeFormatVersion is bumped whenever wireModule's shape, or the
// meaning of a field within it, changes in a way that would make an old
// graph_bytes blob misinterpreted rather than simply rejected.
const SerializeFormatVersion uint32 = 1

// wireGraph is the deterministic on-wire shape for ToBytes/FromBytes.
// Modules are sorted by id so two graphs with identical content always
// serialize to identical bytes, so the stored graph bytes are stable across
// process runs.
type wireGraph struct {
	Version uint32       `msgpack:"version"`
	Modules []wireModule `msgpack:"modules"`
	Entries []string     `msgpack:"entries"`
}

type wireModule struct {
	ID             string        `msgpack:"id"`
	Path           string        `msgpack:"path"`
	SourceType     int           `msgpack:"source_type"`
	Imports        []wireImport  `msgpack:"imports"`
	Exports        []wireExport  `msgpack:"exports"`
	HasSideEffects bool          `msgpack:"has_side_effects"`
	IsEntry        bool          `msgpack:"is_entry"`
	IsExternal     bool          `msgpack:"is_external"`
	Symbols        []wireDecl    `msgpack:"symbols,omitempty"`
	ContentHash    []byte        `msgpack:"content_hash"`
}

type wireImport struct {
	Specifier   string            `msgpack:"specifier"`
	Specifiers  []wireSpecifier   `msgpack:"specifiers"`
	Kind        int               `msgpack:"kind"`
	Resolved    string            `msgpack:"resolved,omitempty"`
	ExternalPkg string            `msgpack:"external_pkg,omitempty"`
	File        string            `msgpack:"file"`
	Start       int               `msgpack:"start"`
	End         int               `msgpack:"end"`
}

type wireSpecifier struct {
	Kind int    `msgpack:"kind"`
	Name string `msgpack:"name,omitempty"`
}

type wireExport struct {
	Name       string `msgpack:"name"`
	Kind       int    `msgpack:"kind"`
	TypeOnly   bool   `msgpack:"type_only"`
	FromSource string `msgpack:"from_source,omitempty"`
	UsageCount int    `msgpack:"usage_count"`
}

type wireDecl struct {
	Name       string `msgpack:"name"`
	Kind       int    `msgpack:"kind"`
	Visibility int    `msgpack:"visibility"`
	Exported   bool   `msgpack:"exported"`
	RefCount   int    `msgpack:"ref_count"`
	EnumName   string `msgpack:"enum_name,omitempty"`
	ClassName  string `msgpack:"class_name,omitempty"`
}

// ToBytes serializes the graph deterministically: modules are emitted in
// sorted-by-id order regardless of the map iteration order underneath.
func (g *ModuleGraph) ToBytes() ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.modules))
	for id := range g.modules {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)

	w := wireGraph{Version: SerializeFormatVersion}
	for _, idStr := range ids {
		m := g.modules[moduleid.ID(idStr)]
		w.Modules = append(w.Modules, toWireModule(m))
	}
	for _, id := range g.entries {
		w.Entries = append(w.Entries, id.String())
	}

	return msgpack.Marshal(w)
}

// FromBytes reconstructs a ModuleGraph from ToBytes output, re-deriving
// forward/reverse edges from each module's import list the same way
// FromCollectedData does.
func FromBytes(data []byte) (*ModuleGraph, error) {
	var w wireGraph
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}
	if w.Version != SerializeFormatVersion {
		return nil, fmt.Errorf("graph format version %d unsupported (want %d)", w.Version, SerializeFormatVersion)
	}

	state := CollectionState{}
	for _, wm := range w.Modules {
		state.Modules = append(state.Modules, fromWireModule(wm))
	}
	for _, idStr := range w.Entries {
		state.Entries = append(state.Entries, moduleid.ID(idStr))
	}

	return FromCollectedData(state), nil
}

func toWireModule(m Module) wireModule {
	wm := wireModule{
		ID:             m.ID.String(),
		Path:           m.Path,
		SourceType:     int(m.SourceType),
		HasSideEffects: m.HasSideEffects,
		IsEntry:        m.IsEntry,
		IsExternal:     m.IsExternal,
		ContentHash:    append([]byte(nil), m.ContentHash[:]...),
	}
	for _, imp := range m.Imports {
		wi := wireImport{
			Specifier:   imp.Specifier,
			Kind:        int(imp.Kind),
			Resolved:    imp.Resolved.String(),
			ExternalPkg: imp.ExternalPkg,
			File:        imp.Span.File,
			Start:       imp.Span.Start,
			End:         imp.Span.End,
		}
		for _, sp := range imp.Specifiers {
			wi.Specifiers = append(wi.Specifiers, wireSpecifier{Kind: int(sp.Kind), Name: sp.Name})
		}
		wm.Imports = append(wm.Imports, wi)
	}
	for _, exp := range m.Exports {
		wm.Exports = append(wm.Exports, wireExport{
			Name:       exp.Name,
			Kind:       int(exp.Kind),
			TypeOnly:   exp.TypeOnly,
			FromSource: exp.FromSource,
			UsageCount: exp.UsageCount,
		})
	}
	if m.Symbols != nil {
		for _, d := range m.Symbols.Declarations {
			wm.Symbols = append(wm.Symbols, wireDecl{
				Name:       d.Name,
				Kind:       int(d.Kind),
				Visibility: int(d.Visibility),
				Exported:   d.Exported,
				RefCount:   d.RefCount,
				EnumName:   d.EnumName,
				ClassName:  d.ClassName,
			})
		}
	}
	return wm
}

func fromWireModule(wm wireModule) Module {
	m := Module{
		ID:             moduleid.ID(wm.ID),
		Path:           wm.Path,
		SourceType:     sourcetype.SourceType(wm.SourceType),
		HasSideEffects: wm.HasSideEffects,
		IsEntry:        wm.IsEntry,
		IsExternal:     wm.IsExternal,
	}
	copy(m.ContentHash[:], wm.ContentHash)
	for _, wi := range wm.Imports {
		imp := Import{
			Specifier:   wi.Specifier,
			Kind:        ImportKind(wi.Kind),
			Resolved:    moduleid.ID(wi.Resolved),
			ExternalPkg: wi.ExternalPkg,
			Span:        Span{File: wi.File, Start: wi.Start, End: wi.End},
		}
		for _, ws := range wi.Specifiers {
			imp.Specifiers = append(imp.Specifiers, ImportSpecifier{Kind: SpecifierKind(ws.Kind), Name: ws.Name})
		}
		m.Imports = append(m.Imports, imp)
	}
	for _, we := range wm.Exports {
		m.Exports = append(m.Exports, Export{
			Name:       we.Name,
			Kind:       ExportKind(we.Kind),
			TypeOnly:   we.TypeOnly,
			FromSource: we.FromSource,
			UsageCount: we.UsageCount,
		})
	}
	if len(wm.Symbols) > 0 {
		st := &SymbolTable{}
		for _, wd := range wm.Symbols {
			st.Declarations = append(st.Declarations, Declaration{
				Name:       wd.Name,
				Kind:       DeclKind(wd.Kind),
				Visibility: Visibility(wd.Visibility),
				Exported:   wd.Exported,
				RefCount:   wd.RefCount,
				EnumName:   wd.EnumName,
				ClassName:  wd.ClassName,
			})
		}
		m.Symbols = st
	}
	return m
}
