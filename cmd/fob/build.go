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

package fob

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/fob/core"
	"bennypowers.dev/fob/internal/diagnostic"
)

// BuildCmd walks entry points, builds the module graph, and reports a
// one-line build summary or a JSON build report.
var BuildCmd = &cobra.Command{
	Use:   "build <entries...>",
	Short: "Walk entry points and build the module graph",
	Long: `Walk one or more entry points, resolving imports and constructing the
module graph. Prints a one-line summary by default, or with --format json
a report of module ids, external and edge counts, the cache key, cache
status, affected modules, and the number of modules with unresolved
imports. Entries may be given as positional
arguments, via --entries-glob, or both.`,
	RunE: runBuild,
}

func init() {
	BuildCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	BuildCmd.Flags().StringSlice("external", nil, "Specifiers/prefix families to treat as external")
	BuildCmd.Flags().StringSlice("alias", nil, "Path alias in key=value form, repeatable")
	BuildCmd.Flags().Int("max-depth", 0, "Maximum BFS depth (0 = unbounded)")
	BuildCmd.Flags().Int("max-modules", 0, "Maximum module count (0 = unbounded)")
	BuildCmd.Flags().String("cache-dir", "", "Incremental cache directory (empty disables caching)")
	BuildCmd.Flags().String("engine-version", "", "Engine version stamped into the cache key")
	BuildCmd.Flags().Bool("require-explicit-externals", false, "Fail on bare specifiers not covered by --external")
	BuildCmd.Flags().String("entries-glob", "", `Glob pattern matching additional entries (e.g. "src/**/*.ts")`)

	_ = viper.BindPFlag("external", BuildCmd.Flags().Lookup("external"))
	_ = viper.BindPFlag("alias", BuildCmd.Flags().Lookup("alias"))
	_ = viper.BindPFlag("max-depth", BuildCmd.Flags().Lookup("max-depth"))
	_ = viper.BindPFlag("max-modules", BuildCmd.Flags().Lookup("max-modules"))
	_ = viper.BindPFlag("cache-dir", BuildCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("engine-version", BuildCmd.Flags().Lookup("engine-version"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	entries, err := collectEntries(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(entries)
	if err != nil {
		return err
	}
	if requireExplicit, _ := cmd.Flags().GetBool("require-explicit-externals"); requireExplicit {
		cfg = cfg.WithRequireExplicitExternals(true)
	}

	result, derr := core.Build(cfg, runtime())
	if derr != nil {
		return reportDiagnostic(derr)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return printBuildJSON(result)
	}
	return printBuildSummary(result)
}

// collectEntries merges positional entry arguments with --entries-glob
// matches, deduplicating by the literal path string — mirroring the
// teacher's cmd/trace.go arg+glob collection loop.
func collectEntries(cmd *cobra.Command, args []string) ([]string, error) {
	seen := make(map[string]bool, len(args))
	var entries []string
	for _, a := range args {
		if !seen[a] {
			seen[a] = true
			entries = append(entries, a)
		}
	}

	pattern, _ := cmd.Flags().GetString("entries-glob")
	if pattern != "" {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --entries-glob pattern: %w", err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				entries = append(entries, m)
			}
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to build: provide entry arguments or --entries-glob")
	}
	return entries, nil
}

func printBuildSummary(result *core.Result) error {
	modules := result.Graph.Modules()
	edgeCount := 0
	for _, m := range modules {
		edgeCount += len(result.Graph.Dependencies(m.ID))
	}
	fmt.Printf("%d modules, %d externals, %d edges\n",
		len(modules), len(result.Graph.ExternalDependencies()), edgeCount)
	if result.FromCache {
		fmt.Println("served from cache (no changes detected)")
	} else if len(result.Affected) > 0 {
		fmt.Printf("%d modules affected by incremental changes\n", len(result.Affected))
	}
	for id, specs := range result.UnresolvedImports {
		for _, spec := range specs {
			fmt.Fprintf(os.Stderr, "Warning: %s: unresolved specifier %q\n", id, spec)
		}
	}
	return nil
}

// buildReport is the JSON shape for `fob build --format json`.
type buildReport struct {
	Modules         []string `json:"modules"`
	ExternalCount   int      `json:"external_count"`
	EdgeCount       int      `json:"edge_count"`
	CacheKey        string   `json:"cache_key"`
	FromCache       bool     `json:"from_cache"`
	Affected        []string `json:"affected,omitempty"`
	UnresolvedCount int      `json:"unresolved_count"`
}

func printBuildJSON(result *core.Result) error {
	modules := result.Graph.Modules()
	report := buildReport{
		CacheKey:  result.CacheKey,
		FromCache: result.FromCache,
	}
	edgeCount := 0
	for _, m := range modules {
		report.Modules = append(report.Modules, m.ID.String())
		edgeCount += len(result.Graph.Dependencies(m.ID))
	}
	report.EdgeCount = edgeCount
	report.ExternalCount = len(result.Graph.ExternalDependencies())
	for _, id := range result.Affected {
		report.Affected = append(report.Affected, id.String())
	}
	report.UnresolvedCount = len(result.UnresolvedImports)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling build report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// reportDiagnostic converts a *diagnostic.Error into a plain error carrying
// its message and returns it to cobra for the exit code; it prints nothing
// itself.
func reportDiagnostic(derr *diagnostic.Error) error {
	return fmt.Errorf("%s", derr.Error())
}
