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

// Package fob provides the build, analyze, and cache commands for fob.
package fob

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"bennypowers.dev/fob/core"
	"bennypowers.dev/fob/fs"
)

// buildConfig assembles a core.Config from the persistent/command flags
// shared by build and analyze, exactly the fields §6's CLI section binds
// through viper: --package, --cache-dir, --max-depth, --max-modules,
// --external, --alias, --engine-version.
func buildConfig(entries []string) (*core.Config, error) {
	absRoot, err := filepath.Abs(viper.GetString("package"))
	if err != nil {
		return nil, fmt.Errorf("invalid package directory: %w", err)
	}

	absEntries := make([]string, len(entries))
	for i, e := range entries {
		abs, err := filepath.Abs(e)
		if err != nil {
			return nil, fmt.Errorf("invalid entry path %q: %w", e, err)
		}
		absEntries[i] = abs
	}

	aliases, err := parseAliases(viper.GetStringSlice("alias"))
	if err != nil {
		return nil, err
	}

	cfg := core.New(absRoot).
		WithEntries(absEntries...).
		WithExternal(viper.GetStringSlice("external")).
		WithPathAliases(aliases).
		WithMaxDepth(viper.GetInt("max-depth")).
		WithMaxModules(viper.GetInt("max-modules")).
		WithCacheDir(viper.GetString("cache-dir")).
		WithEngineVersion(viper.GetString("engine-version"))

	return cfg, nil
}

// parseAliases parses "key=value" pairs from --alias into a substitution
// table, per the Resolver's path-alias table shape.
func parseAliases(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --alias %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func runtime() fs.FileSystem {
	return fs.NewOSFileSystem()
}
