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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/fob/analysis"
	"bennypowers.dev/fob/core"
)

// AnalyzeCmd builds the module graph and reports usage and dead-code
// findings, replacing the teacher's trace/generate commands (which
// produced browser import maps, a different downstream product).
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <entries...>",
	Short: "Report unused exports, unreachable modules, and symbol stats",
	Long: `Walk entry points, build the module graph, and run the usage and
dead-code analysis pass: unused named exports, unreachable modules, and
per-class/per-enum unused-member statistics.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	AnalyzeCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	AnalyzeCmd.Flags().StringSlice("external", nil, "Specifiers/prefix families to treat as external")
	AnalyzeCmd.Flags().StringSlice("alias", nil, "Path alias in key=value form, repeatable")
	AnalyzeCmd.Flags().Int("max-depth", 0, "Maximum BFS depth (0 = unbounded)")
	AnalyzeCmd.Flags().Int("max-modules", 0, "Maximum module count (0 = unbounded)")
	AnalyzeCmd.Flags().String("cache-dir", "", "Incremental cache directory (empty disables caching)")
	AnalyzeCmd.Flags().String("engine-version", "", "Engine version stamped into the cache key")

	_ = viper.BindPFlag("external", AnalyzeCmd.Flags().Lookup("external"))
	_ = viper.BindPFlag("alias", AnalyzeCmd.Flags().Lookup("alias"))
	_ = viper.BindPFlag("max-depth", AnalyzeCmd.Flags().Lookup("max-depth"))
	_ = viper.BindPFlag("max-modules", AnalyzeCmd.Flags().Lookup("max-modules"))
	_ = viper.BindPFlag("cache-dir", AnalyzeCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("engine-version", AnalyzeCmd.Flags().Lookup("engine-version"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}

	result, derr := core.Build(cfg, runtime())
	if derr != nil {
		return reportDiagnostic(derr)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return printAnalyzeJSON(result)
	}
	return printAnalyzeText(result)
}

func printAnalyzeText(result *core.Result) error {
	fmt.Printf("unused exports: %d\n", len(result.UnusedExports))
	for _, u := range result.UnusedExports {
		fmt.Printf("  %s: %s\n", u.Module, u.Name)
	}

	fmt.Printf("unreachable modules: %d\n", len(result.UnreachableModules))
	for _, id := range result.UnreachableModules {
		fmt.Printf("  %s\n", id)
	}

	fmt.Printf("unused private class members:\n")
	for id, groups := range result.Symbols.UnusedPrivateMembers {
		for _, group := range groups {
			fmt.Printf("  %s: class %s: %d members\n", id, group.Class, len(group.Members))
		}
	}

	fmt.Printf("unused enum members:\n")
	for id, groups := range result.Symbols.UnusedEnumMembers {
		for _, group := range groups {
			fmt.Printf("  %s: enum %s: %d members\n", id, group.Enum, len(group.Members))
		}
	}

	fmt.Printf("stats: %+v\n", result.Stats)
	return nil
}

type analyzeReport struct {
	UnusedExports      []analysis.UnusedExport `json:"unused_exports"`
	UnreachableModules []string                `json:"unreachable_modules"`
	Symbols            analysis.SymbolReport   `json:"symbols"`
	Stats              analysis.Stats          `json:"stats"`
}

func printAnalyzeJSON(result *core.Result) error {
	report := analyzeReport{
		UnusedExports: result.UnusedExports,
		Symbols:       result.Symbols,
		Stats:         result.Stats,
	}
	for _, id := range result.UnreachableModules {
		report.UnreachableModules = append(report.UnreachableModules, id.String())
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling analysis report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
