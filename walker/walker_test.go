package walker

import (
	"io/fs"
	"testing"

	"bennypowers.dev/fob/internal/mapfs"
	"bennypowers.dev/fob/resolver"
)

func TestWalkSimpleChain(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/a.ts", `import { b } from "./b";`, fs.FileMode(0o644))
	rt.AddFile("/repo/b.ts", `export const b = 1;`, fs.FileMode(0o644))

	res := resolver.New(rt, "/repo")
	cfg := Config{Entries: []string{"/repo/a.ts"}, Cwd: "/repo", Resolver: res}

	state, err := Walk(cfg, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(state.Modules))
	}
	if len(state.Entries) != 1 || state.Entries[0].String() != "/repo/a.ts" {
		t.Fatalf("unexpected entries: %+v", state.Entries)
	}
}

func TestWalkRecordsExternal(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/a.ts", `import React from "react";`, fs.FileMode(0o644))

	res := resolver.New(rt, "/repo")
	cfg := Config{Entries: []string{"/repo/a.ts"}, Cwd: "/repo", Resolver: res}

	state, err := Walk(cfg, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Modules) != 1 {
		t.Fatalf("expected only the entry module, got %d", len(state.Modules))
	}
	imp := state.Modules[0].Imports[0]
	if imp.ExternalPkg != "react" {
		t.Fatalf("expected react recorded as external, got %+v", imp)
	}
}

func TestWalkMaxModulesExceeded(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/a.ts", `import { b } from "./b";`, fs.FileMode(0o644))
	rt.AddFile("/repo/b.ts", `import { c } from "./c";`, fs.FileMode(0o644))
	rt.AddFile("/repo/c.ts", `export const c = 1;`, fs.FileMode(0o644))

	res := resolver.New(rt, "/repo")
	cfg := Config{Entries: []string{"/repo/a.ts"}, Cwd: "/repo", Resolver: res, MaxModules: 1}

	_, err := Walk(cfg, rt)
	if err == nil {
		t.Fatal("expected TooManyModules error")
	}
}

func TestWalkDoesNotFollowDynamicImportsByDefault(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/a.ts", `const lazy = () => import("./lazy");`, fs.FileMode(0o644))
	rt.AddFile("/repo/lazy.ts", `export const lazy = 1;`, fs.FileMode(0o644))

	res := resolver.New(rt, "/repo")
	cfg := Config{Entries: []string{"/repo/a.ts"}, Cwd: "/repo", Resolver: res}

	state, err := Walk(cfg, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Modules) != 1 {
		t.Fatalf("expected dynamic import to not be followed by default, got %d modules", len(state.Modules))
	}
}

func TestWalkFollowsDynamicImportsWhenConfigured(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/a.ts", `const lazy = () => import("./lazy");`, fs.FileMode(0o644))
	rt.AddFile("/repo/lazy.ts", `export const lazy = 1;`, fs.FileMode(0o644))

	res := resolver.New(rt, "/repo")
	cfg := Config{Entries: []string{"/repo/a.ts"}, Cwd: "/repo", Resolver: res, FollowDynamicImports: true}

	state, err := Walk(cfg, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Modules) != 2 {
		t.Fatalf("expected dynamic import to be followed, got %d modules", len(state.Modules))
	}
}

func TestWalkVirtualEntry(t *testing.T) {
	rt := mapfs.New()
	res := resolver.New(rt, "/repo")
	cfg := Config{
		Cwd:            "/repo",
		Resolver:       res,
		VirtualEntries: map[string][]byte{"entry-0.ts": []byte(`export const v = 1;`)},
	}

	state, err := Walk(cfg, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Modules) != 1 {
		t.Fatalf("expected 1 virtual module, got %d", len(state.Modules))
	}
	if !state.Entries[0].IsVirtual() {
		t.Fatal("expected the virtual entry's id to be flagged virtual")
	}
	if len(state.Modules[0].Exports) != 1 || state.Modules[0].Exports[0].Name != "v" {
		t.Fatalf("expected virtual content to be parsed, got %+v", state.Modules[0].Exports)
	}
}

func TestWalkFollowsReExportSources(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/a.ts", `export * from "./b";`, fs.FileMode(0o644))
	rt.AddFile("/repo/b.ts", `export const b = 1;`, fs.FileMode(0o644))

	res := resolver.New(rt, "/repo")
	cfg := Config{Entries: []string{"/repo/a.ts"}, Cwd: "/repo", Resolver: res}

	state, err := Walk(cfg, rt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Modules) != 2 {
		t.Fatalf("expected re-export source to be walked, got %d modules", len(state.Modules))
	}
}
