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

package jsparser

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"bennypowers.dev/fob/extract"
	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/internal/diagnostic"
	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/sourcetype"
)

// MaxFileSize is the hard read limit for source modules, per §4.D step 1.
const MaxFileSize = 10 << 20 // 10 MiB

// Parse builds a graph.Module from a module's raw bytes. For SFC
// container types it first runs extract to pull out and join script
// blocks; for plain script types it parses source directly; for
// non-script types (JSON, CSS, MDX, Unknown) it returns a leaf module
// with no AST-derived data, since those formats are opaque to this
// parser (transform plugins that understand them are a host concern,
// per the purpose-and-scope non-goals).
func Parse(id moduleid.ID, path string, source []byte, st sourcetype.SourceType, isEntry bool) (graph.Module, *diagnostic.Error) {
	if len(source) > MaxFileSize {
		return graph.Module{}, diagnostic.FileTooLarge(path, int64(len(source)), MaxFileSize)
	}

	m := graph.Module{
		ID:         id,
		Path:       path,
		SourceType: st,
		IsEntry:    isEntry,
	}

	text := source
	jsx := st == sourcetype.Jsx || st == sourcetype.Tsx

	if st.IsContainer() {
		scripts, err := extract.Extract(path, source)
		if err != nil {
			return graph.Module{}, err.(*diagnostic.Error)
		}
		text = extract.Join(scripts)
		jsx = extract.DominantLang(scripts) == "jsx" || extract.DominantLang(scripts) == "tsx"
	} else if !st.IsScript() {
		return m, nil
	}

	qm, qerr := GetQueryManager()
	if qerr != nil {
		return graph.Module{}, &diagnostic.Error{Tag: diagnostic.TagRuntime, Message: qerr.Error(), File: path}
	}

	parser := getParser(jsx)
	defer putParser(jsx, parser)

	tree := parser.Parse(text, nil)
	if tree == nil {
		return graph.Module{}, &diagnostic.Error{Tag: diagnostic.TagTransform, Message: "failed to parse module", File: path}
	}
	defer tree.Close()

	root := tree.RootNode()

	imports, err := collectImports(qm, &root, text, path)
	if err != nil {
		return graph.Module{}, err
	}
	exports, err := collectExports(qm, &root, text, path)
	if err != nil {
		return graph.Module{}, err
	}
	symbols, err := collectSymbols(qm, &root, text, path)
	if err != nil {
		return graph.Module{}, err
	}
	if symbols != nil {
		applyReferenceCounts(qm, &root, text, symbols)
	}

	m.Imports = append(imports, reExportImports(exports)...)
	m.Exports = exports
	m.Symbols = symbols
	m.HasSideEffects = hasSideEffects(&root, text)

	return m, nil
}

// reExportImports synthesizes an Import occurrence (kind ImportReExport)
// for every "export ... from" source, so the walker resolves and follows
// it exactly like a static import and the graph records the dependency
// edge. The Export record itself only keeps the raw specifier.
func reExportImports(exports []graph.Export) []graph.Import {
	var out []graph.Import
	for _, exp := range exports {
		if exp.FromSource == "" {
			continue
		}
		if exp.Kind != graph.ExportReExport && exp.Kind != graph.ExportAll {
			continue
		}
		out = append(out, graph.Import{
			Specifier: exp.FromSource,
			Kind:      graph.ImportReExport,
		})
	}
	return out
}

func collectImports(qm *QueryManager, root *ts.Node, source []byte, path string) ([]graph.Import, *diagnostic.Error) {
	query, err := qm.Query("imports")
	if err != nil {
		return nil, &diagnostic.Error{Tag: diagnostic.TagRuntime, Message: err.Error(), File: path}
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, *root, source)

	// byStatement groups default/namespace/named specifiers by the byte
	// offset of their enclosing import_statement, so multiple matches for
	// the same statement (one per named specifier) accumulate correctly.
	type building struct {
		specifiers []graph.ImportSpecifier
		start, end int
		typeOnly   bool
	}
	byStatement := make(map[int]*building)

	ensure := func(stmt *ts.Node) *building {
		key := int(stmt.StartByte())
		b, ok := byStatement[key]
		if !ok {
			b = &building{start: int(stmt.StartByte()), end: int(stmt.EndByte())}
			byStatement[key] = b
		}
		return b
	}

	var specs []graph.Import
	var dynamics []graph.Import

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		var spec string
		var specNode *ts.Node
		kind := graph.SpecifierKind(-1)

		for _, c := range match.Captures {
			name := names[c.Index]
			node := c.Node
			switch name {
			case "import.spec":
				stmt := ancestorOfKind(&node, "import_statement")
				if stmt == nil {
					continue
				}
				ensure(stmt)
				specs = append(specs, graph.Import{
					Specifier: node.Utf8Text(source),
					Kind:      graph.ImportStatic,
					Span:      graph.Span{File: path, Start: int(stmt.StartByte()), End: int(stmt.EndByte())},
				})
			case "dynamicImport.spec":
				dynamics = append(dynamics, graph.Import{
					Specifier: node.Utf8Text(source),
					Kind:      graph.ImportDynamic,
					Span:      graph.Span{File: path, Start: int(node.StartByte()), End: int(node.EndByte())},
				})
			case "import.default":
				kind = graph.SpecifierDefault
				specNode = &node
			case "import.namespace":
				kind = graph.SpecifierNamespace
				spec = node.Utf8Text(source)
				specNode = &node
			case "import.named":
				kind = graph.SpecifierNamed
				spec = node.Utf8Text(source)
				specNode = &node
			case "import.alias":
				// The local alias is not recorded; Name keeps the imported name.
			case "import.typeonly.spec":
				stmt := ancestorOfKind(&node, "import_statement")
				if stmt == nil {
					continue
				}
				b := ensure(stmt)
				b.typeOnly = true
			}
		}

		if specNode != nil {
			stmt := ancestorOfKind(specNode, "import_statement")
			if stmt != nil {
				b := ensure(stmt)
				b.specifiers = append(b.specifiers, graph.ImportSpecifier{Kind: kind, Name: spec})
			}
		}
	}

	result := make([]graph.Import, 0, len(specs)+len(dynamics))
	for i := range specs {
		key := specs[i].Span.Start
		if b, ok := byStatement[key]; ok {
			specs[i].Specifiers = b.specifiers
			if b.typeOnly {
				specs[i].Kind = graph.ImportTypeOnly
			}
		}
		result = append(result, specs[i])
	}
	result = append(result, dynamics...)
	return result, nil
}

func collectExports(qm *QueryManager, root *ts.Node, source []byte, path string) ([]graph.Export, *diagnostic.Error) {
	query, err := qm.Query("exports")
	if err != nil {
		return nil, &diagnostic.Error{Tag: diagnostic.TagRuntime, Message: err.Error(), File: path}
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, *root, source)

	var exports []graph.Export

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		var name, alias, source2 string
		kind := graph.ExportKind(-1)
		typeOnly := false
		hasDefault := false

		for _, c := range match.Captures {
			cname := names[c.Index]
			node := c.Node
			switch cname {
			case "reexport.named":
				name = node.Utf8Text(source)
				kind = graph.ExportReExport
			case "reexport.alias":
				alias = node.Utf8Text(source)
			case "reexport.spec":
				source2 = node.Utf8Text(source)
			case "reexport.all.marker":
				kind = graph.ExportAll
			case "reexport.all.spec":
				source2 = node.Utf8Text(source)
			case "export.named":
				name = node.Utf8Text(source)
				kind = graph.ExportNamed
			case "export.alias":
				alias = node.Utf8Text(source)
			case "export.default.marker":
				hasDefault = true
			case "export.function":
				name = node.Utf8Text(source)
				kind = graph.ExportNamed
			case "export.class":
				name = node.Utf8Text(source)
				kind = graph.ExportNamed
			case "export.variable":
				name = node.Utf8Text(source)
				kind = graph.ExportNamed
			case "export.typeonly":
				name = node.Utf8Text(source)
				kind = graph.ExportNamed
				typeOnly = true
			}
		}

		if hasDefault {
			exports = append(exports, graph.Export{Name: "default", Kind: graph.ExportDefault})
			continue
		}
		if kind < 0 {
			continue
		}
		finalName := name
		if alias != "" {
			finalName = alias
		}
		exports = append(exports, graph.Export{
			Name:       finalName,
			Kind:       kind,
			TypeOnly:   typeOnly,
			FromSource: source2,
		})
	}

	return exports, nil
}

func collectSymbols(qm *QueryManager, root *ts.Node, source []byte, path string) (*graph.SymbolTable, *diagnostic.Error) {
	query, err := qm.Query("symbols")
	if err != nil {
		return nil, &diagnostic.Error{Tag: diagnostic.TagRuntime, Message: err.Error(), File: path}
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, *root, source)

	table := &graph.SymbolTable{}
	currentEnum := ""

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		// A class_declaration and its members arrive together in one
		// match, so the enclosing class name is found first and threaded
		// onto every decl.classmember capture from the same match.
		className := ""
		accessModifier := ""
		for _, c := range match.Captures {
			switch names[c.Index] {
			case "decl.class":
				className = c.Node.Utf8Text(source)
			case "decl.classmember.access":
				accessModifier = c.Node.Utf8Text(source)
			case "decl.enum.name":
				currentEnum = c.Node.Utf8Text(source)
			}
		}

		for _, c := range match.Captures {
			cname := names[c.Index]
			node := c.Node
			switch cname {
			case "decl.function":
				table.Declarations = append(table.Declarations, graph.Declaration{Name: node.Utf8Text(source), Kind: graph.DeclFunction})
			case "decl.class":
				table.Declarations = append(table.Declarations, graph.Declaration{Name: node.Utf8Text(source), Kind: graph.DeclClass})
			case "decl.classmember":
				vis := graph.VisibilityPublic
				text := node.Utf8Text(source)
				if len(text) > 0 && text[0] == '#' {
					vis = graph.VisibilityPrivate
				}
				if accessModifier == "private" {
					vis = graph.VisibilityPrivate
				}
				table.Declarations = append(table.Declarations, graph.Declaration{Name: text, Kind: graph.DeclClassMember, Visibility: vis, ClassName: className})
			case "decl.variable":
				table.Declarations = append(table.Declarations, graph.Declaration{Name: node.Utf8Text(source), Kind: graph.DeclVariable})
			case "decl.enummember":
				table.Declarations = append(table.Declarations, graph.Declaration{Name: node.Utf8Text(source), Kind: graph.DeclEnumMember, EnumName: currentEnum})
			}
		}
	}

	if len(table.Declarations) == 0 {
		return nil, nil
	}
	return table, nil
}

// applyReferenceCounts tallies every identifier-like occurrence in the
// file by name and sets each Declaration's RefCount to that tally minus
// the declaration's own binding occurrence, per §4.D step 5's "simple
// intra-file reference counts" — a name tally, not scope resolution.
func applyReferenceCounts(qm *QueryManager, root *ts.Node, source []byte, table *graph.SymbolTable) {
	counts, err := collectReferenceCounts(qm, root, source)
	if err != nil {
		return
	}
	for i := range table.Declarations {
		name := table.Declarations[i].Name
		refs := counts[name] - 1
		if refs < 0 {
			refs = 0
		}
		table.Declarations[i].RefCount = refs
	}
}

func collectReferenceCounts(qm *QueryManager, root *ts.Node, source []byte) (map[string]int, error) {
	query, err := qm.Query("references")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	matches := cursor.Matches(query, *root, source)

	counts := make(map[string]int)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, c := range match.Captures {
			if names[c.Index] != "ref.name" {
				continue
			}
			counts[c.Node.Utf8Text(source)]++
		}
	}
	return counts, nil
}

func ancestorOfKind(node *ts.Node, kind string) *ts.Node {
	n := node
	for n != nil {
		if n.Kind() == kind {
			return n
		}
		n = n.Parent()
	}
	return nil
}
