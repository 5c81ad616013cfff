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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/fob/cache"
)

// CacheCmd is the parent of the info/clear subcommands, grounded in the
// teacher's cmd/version thin-command style: a small cobra tree around a
// single-purpose package, no business logic in the command layer itself.
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or evict the incremental build cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print incremental cache metadata",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the incremental cache directory",
	RunE:  runCacheClear,
}

func init() {
	CacheCmd.PersistentFlags().String("cache-dir", "", "Incremental cache directory")
	_ = viper.BindPFlag("cache-dir", CacheCmd.PersistentFlags().Lookup("cache-dir"))

	CacheCmd.AddCommand(cacheInfoCmd)
	CacheCmd.AddCommand(cacheClearCmd)
}

func cacheDirOrErr() (string, error) {
	dir := viper.GetString("cache-dir")
	if dir == "" {
		return "", fmt.Errorf("--cache-dir is required")
	}
	return dir, nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	dir, err := cacheDirOrErr()
	if err != nil {
		return err
	}

	ic, ok := cache.Load(runtime(), dir)
	if !ok {
		fmt.Println("no incremental cache found")
		return nil
	}

	fmt.Printf("format version: %d\n", ic.FormatVersion)
	fmt.Printf("engine version: %s\n", ic.EngineVersion)
	fmt.Printf("entry points: %d\n", len(ic.Graph.EntryPoints()))
	fmt.Printf("tracked modules: %d\n", len(ic.FileHashes))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	dir, err := cacheDirOrErr()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	fmt.Printf("removed cache directory %s\n", dir)
	return nil
}
