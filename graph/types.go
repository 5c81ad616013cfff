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

// Package graph owns the canonical module/import/export types and the
// ModuleGraph that ties them together, per the data model. jsparser and
// walker construct these values; nothing downstream redefines them.
package graph

import (
	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/sourcetype"
)

// ImportKind classifies how an import occurrence reached the module.
type ImportKind int

const (
	ImportStatic ImportKind = iota
	ImportDynamic
	ImportReExport
	ImportTypeOnly
)

func (k ImportKind) String() string {
	switch k {
	case ImportDynamic:
		return "dynamic"
	case ImportReExport:
		return "re-export"
	case ImportTypeOnly:
		return "type-only"
	default:
		return "static"
	}
}

// SpecifierKind classifies one bound name within an import occurrence.
type SpecifierKind int

const (
	SpecifierDefault SpecifierKind = iota
	SpecifierNamed
	SpecifierNamespace
)

// ImportSpecifier is one bound name within an Import.
type ImportSpecifier struct {
	Kind SpecifierKind
	// Name is the imported name for SpecifierNamed, or the local binding
	// name for SpecifierNamespace. Empty for SpecifierDefault.
	Name string
}

// Span is a byte range within a module's source text.
type Span struct {
	File  string
	Start int
	End   int
}

// Import is one import occurrence inside a module.
type Import struct {
	Specifier   string
	Specifiers  []ImportSpecifier
	Kind        ImportKind
	Resolved    moduleid.ID // empty when external or unresolved
	ExternalPkg string      // set when Resolved is empty because of an external match
	Span        Span
}

// ExportKind classifies how an export was declared.
type ExportKind int

const (
	ExportNamed ExportKind = iota
	ExportDefault
	ExportReExport
	ExportAll
)

// Export is one export declared in a module.
type Export struct {
	Name       string // "default" for ExportDefault
	Kind       ExportKind
	TypeOnly   bool
	FromSource string // re-export source specifier, if any
	UsageCount int     // populated by the analysis pass, nowhere else
}

// DeclKind classifies a symbol-table entry.
type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclFunction
	DeclClass
	DeclClassMember
	DeclEnumMember
)

// Visibility applies to DeclClassMember entries.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
)

// Declaration is one entry in a module's SymbolTable.
type Declaration struct {
	Name       string
	Kind       DeclKind
	Visibility Visibility
	Exported   bool
	RefCount   int
	// EnumName groups DeclEnumMember entries by their containing enum.
	EnumName string
	// ClassName groups DeclClassMember entries by their containing class.
	ClassName string
}

// SymbolTable holds a module's locally declared identifiers.
type SymbolTable struct {
	Declarations []Declaration
}

// Module is one node in the ModuleGraph.
type Module struct {
	ID              moduleid.ID
	Path            string
	SourceType      sourcetype.SourceType
	Imports         []Import
	Exports         []Export
	HasSideEffects  bool
	IsEntry         bool
	IsExternal      bool
	Symbols         *SymbolTable
	ContentHash     [32]byte
}

// ExternalDependency aggregates all local modules that imported a given
// external specifier.
type ExternalDependency struct {
	Specifier string
	Importers []moduleid.ID
}

// CollectionState is the transient product of a walk: modules discovered,
// the entry set, and import-outcome metadata — consumed once to build a
// ModuleGraph via FromCollectedData.
type CollectionState struct {
	Modules []Module
	Entries []moduleid.ID
	// Unresolved records specifiers the resolver could not place, keyed by
	// the importing module.
	Unresolved map[moduleid.ID][]string
}
