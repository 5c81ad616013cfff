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

// Package cache implements the Incremental Cache of §4.H: a content-
// addressed build key, a badger-backed persistent store for serialized
// graphs, an incremental.bin sidecar recording per-module content hashes,
// and the change/affected-set computation that drives partial rebuilds.
// Every error this package can produce is non-fatal to the build that
// consults it — callers treat a cache miss and a cache failure alike.
package cache

import (
	"encoding/hex"
	"sort"

	"lukechampine.com/blake3"

	"bennypowers.dev/fob/moduleid"
)

// FormatVersion is bumped whenever the meaning of a cached entry changes in
// a way that would make an old value misinterpreted rather than simply
// rejected. It is the first field hashed into every CacheKey and the first
// field checked when validating a loaded IncrementalCache.
const FormatVersion uint32 = 1

// Entry is one entry point's identity contribution to the cache key: its
// specifier as given by the host, plus the content hash of the file (or
// virtual content) it resolved to at collection time.
type Entry struct {
	Specifier   string
	ContentHash [32]byte
}

// BuildOptions is the deterministic subset of bundler-facing options that
// affect the cache key without the core interpreting their meaning, per
// §3/§6 ("opaque to the core; contribute deterministically to the cache
// key").
type BuildOptions struct {
	Format                 string
	Platform               string
	SourcemapMode          string
	MinifyLevel            int
	External                []string
	PathAliases            map[string]string
	Conditions             []string
	CodeSplittingThreshold int
}

// KeyInput is the exhaustive, enumerated set of cache-relevant inputs from
// §3's CacheKey definition.
type KeyInput struct {
	EngineVersion string
	Entries       []Entry
	Options       BuildOptions
	VirtualFiles  map[string][]byte
	Env           map[string]string
}

// BuildKey computes the hex-encoded BLAKE3 digest over in, sorting every
// unordered component first so that functionally equivalent configurations
// (same externals in a different order, same env vars assembled from a
// different map iteration) always produce the same key.
func BuildKey(in KeyInput) string {
	h := blake3.New(32, nil)

	writeUint32(h, FormatVersion)
	writeString(h, in.EngineVersion)

	entries := append([]Entry(nil), in.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Specifier < entries[j].Specifier })
	writeUint32(h, uint32(len(entries)))
	for _, e := range entries {
		writeString(h, e.Specifier)
		h.Write(e.ContentHash[:])
	}

	writeOptions(h, in.Options)

	paths := make([]string, 0, len(in.VirtualFiles))
	for p := range in.VirtualFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	writeUint32(h, uint32(len(paths)))
	for _, p := range paths {
		writeString(h, p)
		writeBytes(h, in.VirtualFiles[p])
	}

	envNames := make([]string, 0, len(in.Env))
	for k := range in.Env {
		envNames = append(envNames, k)
	}
	sort.Strings(envNames)
	writeUint32(h, uint32(len(envNames)))
	for _, k := range envNames {
		writeString(h, k)
		writeString(h, in.Env[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeOptions(h *blake3.Hasher, o BuildOptions) {
	writeString(h, o.Format)
	writeString(h, o.Platform)
	writeString(h, o.SourcemapMode)
	writeUint32(h, uint32(o.MinifyLevel))
	writeUint32(h, uint32(o.CodeSplittingThreshold))

	external := append([]string(nil), o.External...)
	sort.Strings(external)
	writeUint32(h, uint32(len(external)))
	for _, e := range external {
		writeString(h, e)
	}

	aliasKeys := make([]string, 0, len(o.PathAliases))
	for k := range o.PathAliases {
		aliasKeys = append(aliasKeys, k)
	}
	sort.Strings(aliasKeys)
	writeUint32(h, uint32(len(aliasKeys)))
	for _, k := range aliasKeys {
		writeString(h, k)
		writeString(h, o.PathAliases[k])
	}

	conditions := append([]string(nil), o.Conditions...)
	sort.Strings(conditions)
	writeUint32(h, uint32(len(conditions)))
	for _, c := range conditions {
		writeString(h, c)
	}
}

// writeString and writeBytes length-prefix their payload so that e.g. the
// two-field sequence ("foo", "bar") can never hash the same as ("fo",
// "obar"); writeUint32 is a fixed-width 4-byte field, never ambiguous.
func writeString(h *blake3.Hasher, s string) {
	writeBytes(h, []byte(s))
}

func writeBytes(h *blake3.Hasher, b []byte) {
	writeUint32(h, uint32(len(b)))
	h.Write(b)
}

func writeUint32(h *blake3.Hasher, v uint32) {
	var buf [4]byte
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	h.Write(buf[:])
}

// ContentHashes is the per-module hash map carried by an IncrementalCache,
// keyed by the non-virtual modules discovered during the collection it was
// built from.
type ContentHashes map[moduleid.ID][32]byte
