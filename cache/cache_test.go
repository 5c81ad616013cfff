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

import "testing"

func baseInput() KeyInput {
	return KeyInput{
		EngineVersion: "1.0.0",
		Entries: []Entry{
			{Specifier: "b.ts", ContentHash: [32]byte{2}},
			{Specifier: "a.ts", ContentHash: [32]byte{1}},
		},
		Options: BuildOptions{
			Format:      "esm",
			Platform:    "browser",
			MinifyLevel: 1,
			External:    []string{"react", "react-dom"},
			PathAliases: map[string]string{"@/": "./src/"},
			Conditions:  []string{"browser", "import"},
		},
		VirtualFiles: map[string][]byte{"virtual:entry-0": []byte("export default 1;")},
		Env:          map[string]string{"NODE_ENV": "production"},
	}
}

func TestBuildKeyDeterministicUnderReordering(t *testing.T) {
	a := baseInput()
	b := baseInput()
	// Reorder every unordered component; the key must not move.
	b.Entries = []Entry{b.Entries[1], b.Entries[0]}
	b.Options.External = []string{"react-dom", "react"}
	b.Options.Conditions = []string{"import", "browser"}

	if BuildKey(a) != BuildKey(b) {
		t.Fatal("expected reordering unordered inputs to leave the key unchanged")
	}
}

func TestBuildKeyChangesWithContent(t *testing.T) {
	a := baseInput()
	b := baseInput()
	b.Entries[0].ContentHash = [32]byte{9}

	if BuildKey(a) == BuildKey(b) {
		t.Fatal("expected a changed entry content hash to change the key")
	}
}

func TestBuildKeyChangesWithEngineVersion(t *testing.T) {
	a := baseInput()
	b := baseInput()
	b.EngineVersion = "2.0.0"

	if BuildKey(a) == BuildKey(b) {
		t.Fatal("expected a different engine version to change the key")
	}
}

func TestBuildKeyNoFieldAliasingBetweenAdjacentStrings(t *testing.T) {
	// "ab"+"c" and "a"+"bc" concatenate to the same raw bytes ("abc") and
	// sort to the same relative order; only length-prefixing each field
	// keeps these distinct.
	a := baseInput()
	a.Entries = []Entry{{Specifier: "ab", ContentHash: [32]byte{1}}, {Specifier: "c", ContentHash: [32]byte{1}}}
	b := baseInput()
	b.Entries = []Entry{{Specifier: "a", ContentHash: [32]byte{1}}, {Specifier: "bc", ContentHash: [32]byte{1}}}

	if BuildKey(a) == BuildKey(b) {
		t.Fatal("expected length-prefixed encoding to avoid field aliasing")
	}
}
