package resolver

import (
	"io/fs"
	"testing"

	"bennypowers.dev/fob/internal/mapfs"
)

func TestResolveExternalExactMatch(t *testing.T) {
	rt := mapfs.New()
	r := New(rt, "/repo").WithExternals([]string{"react"})
	out, err := r.Resolve("react", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsExternal() || out.External != "react" {
		t.Fatalf("expected external react, got %+v", out)
	}
}

func TestResolveExternalPrefixFamily(t *testing.T) {
	rt := mapfs.New()
	r := New(rt, "/repo").WithExternals([]string{"lodash"})
	out, err := r.Resolve("lodash/debounce", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsExternal() || out.External != "lodash" {
		t.Fatalf("expected external lodash, got %+v", out)
	}
}

func TestResolveBareSpecifierShortcut(t *testing.T) {
	rt := mapfs.New()
	r := New(rt, "/repo")
	out, err := r.Resolve("some-package", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsExternal() || out.External != "some-package" {
		t.Fatalf("expected bare specifier to shortcut to external, got %+v", out)
	}
}

func TestResolveRelativeImport(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/src/b.ts", "export const b = 1;", fs.FileMode(0o644))
	r := New(rt, "/repo")
	out, err := r.Resolve("./b", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsLocal() {
		t.Fatalf("expected local resolution, got %+v", out)
	}
	if out.Local.String() != "/repo/src/b.ts" {
		t.Fatalf("unexpected resolved path: %s", out.Local)
	}
}

func TestResolveExtensionProbing(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/src/util.tsx", "export const x = 1;", fs.FileMode(0o644))
	r := New(rt, "/repo")
	out, err := r.Resolve("./util", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsLocal() || out.Local.String() != "/repo/src/util.tsx" {
		t.Fatalf("expected util.tsx to be probed, got %+v", out)
	}
}

func TestResolveDirectoryIndexProbing(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/src/widgets/index.ts", "export const w = 1;", fs.FileMode(0o644))
	r := New(rt, "/repo")
	out, err := r.Resolve("./widgets", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsLocal() || out.Local.String() != "/repo/src/widgets/index.ts" {
		t.Fatalf("expected widgets/index.ts to be probed, got %+v", out)
	}
}

func TestResolvePackageJSONExportsDirectoryProbe(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/src/ui/package.json", `{"name":"ui","exports":{".":"./dist/main.js"}}`, fs.FileMode(0o644))
	rt.AddFile("/repo/src/ui/dist/main.js", "export const ui = 1;", fs.FileMode(0o644))
	r := New(rt, "/repo")
	out, err := r.Resolve("./ui", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsLocal() || out.Local.String() != "/repo/src/ui/dist/main.js" {
		t.Fatalf("expected package.json exports to steer resolution, got %+v", out)
	}
}

func TestResolvePathAliasSubstitution(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/repo/src/components/Button.ts", "export const Button = 1;", fs.FileMode(0o644))
	r := New(rt, "/repo").WithPathAliases(map[string]string{"@components": "/repo/src/components"})
	out, err := r.Resolve("@components/Button", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsLocal() || out.Local.String() != "/repo/src/components/Button.ts" {
		t.Fatalf("expected alias substitution to resolve, got %+v", out)
	}
}

func TestResolveUnresolved(t *testing.T) {
	rt := mapfs.New()
	r := New(rt, "/repo")
	out, err := r.Resolve("./missing", "/repo/src/a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsUnresolved() || out.Unresolved != "./missing" {
		t.Fatalf("expected unresolved, got %+v", out)
	}
}

func TestResolveEscapingPathIsRejected(t *testing.T) {
	rt := mapfs.New()
	rt.AddFile("/outside/secret.ts", "export const s = 1;", fs.FileMode(0o644))
	r := New(rt, "/repo/sub")
	_, err := r.Resolve("../../outside/secret", "/repo/sub/a.ts")
	if err == nil {
		t.Fatal("expected a path traversal error")
	}
}
