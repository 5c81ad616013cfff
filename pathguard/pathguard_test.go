package pathguard

import (
	"testing"

	"bennypowers.dev/fob/internal/mapfs"
)

func TestNormalizeAndValidateWithinCwd(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/src/index.ts", "", 0o644)

	got, err := NormalizeAndValidate(mfs, "/repo/src/index.ts", "/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/repo/src/index.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeAndValidateEscapesCwd(t *testing.T) {
	mfs := mapfs.New()

	_, err := NormalizeAndValidate(mfs, "/etc/passwd", "/repo")
	if err == nil {
		t.Fatal("expected PathTraversal error")
	}
}

func TestNormalizeAndValidateMonorepoRoot(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/pnpm-workspace.yaml", "packages:\n  - 'packages/*'\n", 0o644)
	mfs.AddFile("/repo/packages/b/index.ts", "", 0o644)

	got, err := NormalizeAndValidate(mfs, "/repo/packages/b/index.ts", "/repo/packages/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/repo/packages/b/index.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestFindMonorepoRootFallsBackToStart(t *testing.T) {
	mfs := mapfs.New()
	got := FindMonorepoRoot(mfs, "/repo/packages/a")
	if got != "/repo/packages/a" {
		t.Fatalf("got %q", got)
	}
}

func TestFindMonorepoRootViaPackageJSONWorkspaces(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/package.json", `{"workspaces": ["packages/*"]}`, 0o644)
	got := FindMonorepoRoot(mfs, "/repo/packages/a")
	if got != "/repo" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateAssetSize(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/repo/asset.png", string(make([]byte, 100)), 0o644)

	size, err := ValidateAssetSize(mfs, "/repo/asset.png", 50)
	if err == nil {
		t.Fatal("expected FileTooLarge error")
	}
	if size != 100 {
		t.Fatalf("got size %d", size)
	}

	_, err = ValidateAssetSize(mfs, "/repo/asset.png", 0)
	if err != nil {
		t.Fatalf("unexpected error with default limit: %v", err)
	}
}
