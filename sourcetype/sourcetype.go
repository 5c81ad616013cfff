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

// Package sourcetype classifies a module's path into the handling it needs
// downstream: which parser to invoke, and whether it is a container format
// whose script blocks must be extracted before parsing.
package sourcetype

import "strings"

// SourceType identifies how a module's content should be interpreted.
type SourceType int

const (
	Unknown SourceType = iota
	JavaScript
	TypeScript
	Jsx
	Tsx
	JSON
	CSS
	MDX
	ContainerVue
	ContainerSvelte
)

// Classify determines the SourceType of a module from its path extension.
// Query suffixes and hash fragments are not stripped here; callers pass the
// already-resolved filesystem path.
func Classify(path string) SourceType {
	ext := extOf(path)
	switch ext {
	case ".js", ".mjs", ".cjs":
		return JavaScript
	case ".ts", ".mts", ".cts":
		return TypeScript
	case ".jsx":
		return Jsx
	case ".tsx":
		return Tsx
	case ".json":
		return JSON
	case ".css":
		return CSS
	case ".mdx":
		return MDX
	case ".vue":
		return ContainerVue
	case ".svelte":
		return ContainerSvelte
	default:
		return Unknown
	}
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	// guard against a dot inside a directory segment, e.g. ".config/foo"
	if j := strings.LastIndexByte(path, '/'); j > i {
		return ""
	}
	return strings.ToLower(path[i:])
}

// IsContainer reports whether modules of this type carry embedded script
// blocks that must go through extract before jsparser sees them.
func (s SourceType) IsContainer() bool {
	return s == ContainerVue || s == ContainerSvelte
}

// IsScript reports whether s is parsed directly as JS/TS/JSX/TSX source.
func (s SourceType) IsScript() bool {
	switch s {
	case JavaScript, TypeScript, Jsx, Tsx:
		return true
	default:
		return false
	}
}

func (s SourceType) String() string {
	switch s {
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case Jsx:
		return "jsx"
	case Tsx:
		return "tsx"
	case JSON:
		return "json"
	case CSS:
		return "css"
	case MDX:
		return "mdx"
	case ContainerVue:
		return "vue"
	case ContainerSvelte:
		return "svelte"
	default:
		return "unknown"
	}
}
