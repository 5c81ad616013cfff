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

// Package moduleid defines the opaque module identity used as the sole key
// into the module graph's tables. An ID is either a canonical, absolute
// filesystem path or a synthesized "virtual:" id for in-memory entries.
// Equality and hashing both use the canonical string form, so ID is a plain
// string newtype rather than a struct with a pointer-shaped identity.
package moduleid

import "strings"

// VirtualPrefix marks an ID as synthesized rather than filesystem-backed.
const VirtualPrefix = "virtual:"

// ID is the canonical identity of a module within a single build.
type ID string

// FromPath wraps an already-canonicalized absolute path as an ID.
// Callers are expected to have run the path through pathguard first;
// this constructor does not canonicalize.
func FromPath(canonicalPath string) ID {
	return ID(canonicalPath)
}

// Virtual constructs a synthesized id for an in-memory entry, e.g. an
// inline (name, content) pair passed directly in the build config.
func Virtual(name string) ID {
	if strings.HasPrefix(name, VirtualPrefix) {
		return ID(name)
	}
	return ID(VirtualPrefix + name)
}

// IsVirtual reports whether id was synthesized rather than filesystem-backed.
func (id ID) IsVirtual() bool {
	return strings.HasPrefix(string(id), VirtualPrefix)
}

// String returns the canonical string form, also used as the map key.
func (id ID) String() string {
	return string(id)
}

// Empty reports whether id is the zero value, used by callers to represent
// "left empty" resolutions (external or unresolved imports, per spec §3).
func (id ID) Empty() bool {
	return id == ""
}
