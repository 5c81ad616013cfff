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

package core

import (
	"bennypowers.dev/fob/analysis"
	"bennypowers.dev/fob/cache"
	"bennypowers.dev/fob/graph"
	"bennypowers.dev/fob/moduleid"
)

// Result is everything a single Build call produces: the graph itself,
// every post-walk analysis, and the cache bookkeeping a host may want to
// report (hit/miss, what changed, what was affected).
type Result struct {
	Graph *graph.ModuleGraph

	UsageCounts        analysis.UsageCounts
	UnusedExports      []analysis.UnusedExport
	UnreachableModules []moduleid.ID
	Symbols            analysis.SymbolReport
	Stats              analysis.Stats

	// UnresolvedImports records specifiers the Resolver could not place,
	// keyed by the importing module — a non-fatal anomaly per §7.
	UnresolvedImports map[moduleid.ID][]string

	// CacheKey is always computed, even when caching is disabled
	// (cfg.WithCacheDir("")); it is the identity a host can use to decide
	// whether to reuse a previously-returned Result itself.
	CacheKey string

	// FromCache is true when a valid cache was found with zero direct
	// changes relative to the current inputs (§4.H's ServeCached state).
	FromCache bool
	// ChangeSet and Affected are populated only when a prior cache was
	// loaded and valid; both are zero-valued on a cold cache or a
	// validity-check failure.
	ChangeSet cache.ChangeSet
	Affected  []moduleid.ID
}
