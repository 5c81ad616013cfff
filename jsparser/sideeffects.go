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

import ts "github.com/tree-sitter/go-tree-sitter"

// declarationKinds are top-level statement kinds that never count toward
// has_side_effects by themselves; their initializers are still inspected.
var declarationKinds = map[string]bool{
	"import_statement":   true,
	"export_statement":   true,
	"function_declaration": true,
	"class_declaration":    true,
	"lexical_declaration":  true,
	"variable_declaration": true,
	"interface_declaration":   true,
	"type_alias_declaration":  true,
	"enum_declaration":        true,
	"ambient_declaration":     true,
	"comment":                  true,
	"empty_statement":          true,
}

// sideEffectKinds are node kinds that, if found anywhere inside a
// declaration's initializer (outside a nested function/class body), make
// the module side-effectful.
var sideEffectKinds = map[string]bool{
	"assignment_expression": true,
	"await_expression":      true,
	"new_expression":        true,
}

// bodyBoundaryKinds mark nodes whose internals execute later, not at
// module top level, so scanning does not descend into them looking for
// side effects.
var bodyBoundaryKinds = map[string]bool{
	"function_declaration":    true,
	"function_expression":     true,
	"arrow_function":          true,
	"generator_function":      true,
	"generator_function_declaration": true,
	"class_declaration":       true,
	"class":                   true,
	"method_definition":       true,
}

// hasSideEffects implements the pinned decision: a module has side
// effects iff its top level contains a call expression that is not of
// the form require(...), an assignment expression, an await expression,
// a new expression, or a non-declaration statement
// (if/for/while/block/throw/debugger). Declarations, type-only
// statements, and import/export statements never count by themselves;
// their initializers are inspected for the above expressions, so
// `const m = new Map()` counts.
func hasSideEffects(root *ts.Node, source []byte) bool {
	count := root.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		if !declarationKinds[kind] {
			return true
		}
		if scanForSideEffects(child, source) {
			return true
		}
	}
	return false
}

// scanForSideEffects walks node's subtree looking for a disqualifying
// expression, without descending into nested function/class bodies.
func scanForSideEffects(node *ts.Node, source []byte) bool {
	if node == nil {
		return false
	}
	kind := node.Kind()

	if kind == "call_expression" {
		if !isRequireCall(node, source) {
			return true
		}
		// require(...) itself is fine; still scan its arguments for
		// nested side-effectful expressions (e.g. require(computePath())).
	} else if sideEffectKinds[kind] {
		return true
	}

	if bodyBoundaryKinds[kind] {
		return false
	}

	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if scanForSideEffects(child, source) {
			return true
		}
	}
	return false
}

func isRequireCall(node *ts.Node, source []byte) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	return fn.Kind() == "identifier" && fn.Utf8Text(source) == "require"
}
