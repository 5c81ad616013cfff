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
	"bytes"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"bennypowers.dev/fob/fs"
	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/moduleid"
)

// incrementalFile and incrementalTmp are the sidecar's final and staging
// names, per §4.H/§6: writes go via write(tmp) + rename(tmp, final).
const (
	incrementalFile = "incremental.bin"
	incrementalTmp  = "incremental.tmp"
)

// IncrementalCache is the in-memory form of the §3 IncrementalCache record:
// the cache-format version, the engine-version string, the last serialized
// ModuleGraph, and a content hash for every non-virtual module in it.
type IncrementalCache struct {
	FormatVersion uint32
	EngineVersion string
	Graph         *graph.ModuleGraph
	FileHashes    ContentHashes
}

// wireIncremental is the on-disk msgpack shape. Keys are module ids in
// their plain string form (moduleid.ID.String, read back through
// moduleid.FromPath) and the graph is carried pre-serialized via graph.ToBytes, so
// decoding this record never needs FromBytes on the happy path of just
// reading the file hash map.
type wireIncremental struct {
	FormatVersion uint32            `msgpack:"format_version"`
	EngineVersion string            `msgpack:"engine_version"`
	FileHashes    map[string][]byte `msgpack:"file_hashes"`
	GraphBytes    []byte            `msgpack:"graph_bytes"`
}

// Save writes ic to <dir>/incremental.bin atomically: the full record is
// written to incremental.tmp, then renamed over the final name.
func Save(runtime fs.FileSystem, dir string, ic *IncrementalCache) error {
	graphBytes, err := ic.Graph.ToBytes()
	if err != nil {
		return err
	}

	w := wireIncremental{
		FormatVersion: ic.FormatVersion,
		EngineVersion: ic.EngineVersion,
		FileHashes:    make(map[string][]byte, len(ic.FileHashes)),
		GraphBytes:    graphBytes,
	}
	for id, hash := range ic.FileHashes {
		w.FileHashes[id.String()] = append([]byte(nil), hash[:]...)
	}

	// Sorted map keys make an unchanged cache encode to identical bytes.
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(w); err != nil {
		return err
	}
	data := buf.Bytes()

	tmp := filepath.Join(dir, incrementalTmp)
	final := filepath.Join(dir, incrementalFile)

	if err := runtime.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := runtime.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return runtime.Rename(tmp, final)
}

// Load reads <dir>/incremental.bin. A missing file or any decode failure
// is reported as (nil, false) — a cache miss, not an error — per
// §4.H/§7's "all cache errors are non-fatal" rule; callers proceed with a
// full build exactly as on a cold cache.
func Load(runtime fs.FileSystem, dir string) (*IncrementalCache, bool) {
	final := filepath.Join(dir, incrementalFile)
	if !runtime.Exists(final) {
		return nil, false
	}

	data, err := runtime.ReadFile(final)
	if err != nil {
		return nil, false
	}

	var w wireIncremental
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, false
	}

	g, err := graph.FromBytes(w.GraphBytes)
	if err != nil {
		return nil, false
	}

	hashes := make(ContentHashes, len(w.FileHashes))
	for idStr, h := range w.FileHashes {
		var hash [32]byte
		copy(hash[:], h)
		hashes[moduleid.FromPath(idStr)] = hash
	}

	return &IncrementalCache{
		FormatVersion: w.FormatVersion,
		EngineVersion: w.EngineVersion,
		Graph:         g,
		FileHashes:    hashes,
	}, true
}

// Valid reports whether ic may be served for a request with the given
// current format version, engine version, and entry-point set, per §4.H's
// three-part validity check.
func (ic *IncrementalCache) Valid(formatVersion uint32, engineVersion string, entries []moduleid.ID) bool {
	if ic.FormatVersion != formatVersion || ic.EngineVersion != engineVersion {
		return false
	}

	stored := make(map[moduleid.ID]bool, len(ic.Graph.EntryPoints()))
	for _, id := range ic.Graph.EntryPoints() {
		stored[id] = true
	}
	if len(stored) != len(entries) {
		return false
	}
	for _, id := range entries {
		if !stored[id] {
			return false
		}
	}
	return true
}
