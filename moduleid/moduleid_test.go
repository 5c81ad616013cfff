package moduleid

import "testing"

func TestFromPath(t *testing.T) {
	id := FromPath("/repo/src/index.ts")
	if id.String() != "/repo/src/index.ts" {
		t.Fatalf("got %q", id.String())
	}
	if id.IsVirtual() {
		t.Fatal("filesystem id should not be virtual")
	}
}

func TestVirtual(t *testing.T) {
	id := Virtual("entry-0")
	if !id.IsVirtual() {
		t.Fatal("expected virtual id")
	}
	if id.String() != "virtual:entry-0" {
		t.Fatalf("got %q", id.String())
	}
	// idempotent on an already-prefixed name
	again := Virtual(id.String())
	if again != id {
		t.Fatalf("Virtual should not double-prefix: %q", again)
	}
}

func TestEmpty(t *testing.T) {
	var id ID
	if !id.Empty() {
		t.Fatal("zero value should be Empty")
	}
	if FromPath("x").Empty() {
		t.Fatal("non-zero id should not be Empty")
	}
}
