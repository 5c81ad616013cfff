package jsparser

import (
	"testing"

	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/sourcetype"
)

func parseForEffects(t *testing.T, src string) bool {
	t.Helper()
	m, err := Parse(moduleid.FromPath("/repo/a.ts"), "/repo/a.ts", []byte(src), sourcetype.TypeScript, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m.HasSideEffects
}

func TestPureDeclarationsAreNotSideEffectful(t *testing.T) {
	if parseForEffects(t, `const a = 1; function f() {} class C {}`) {
		t.Fatal("pure declarations should not be flagged")
	}
}

func TestRequireCallIsNotSideEffectful(t *testing.T) {
	if parseForEffects(t, `const fs = require("fs");`) {
		t.Fatal("require() initializer should not be flagged")
	}
}

func TestNonRequireCallInInitializerIsSideEffectful(t *testing.T) {
	if !parseForEffects(t, `const x = computeDefault();`) {
		t.Fatal("non-require call in initializer should be flagged")
	}
}

func TestTopLevelCallStatementIsSideEffectful(t *testing.T) {
	if !parseForEffects(t, `registerPlugin();`) {
		t.Fatal("top-level call expression statement should be flagged")
	}
}

func TestTopLevelIfIsSideEffectful(t *testing.T) {
	if !parseForEffects(t, `if (true) { console.log("x"); }`) {
		t.Fatal("top-level if statement should be flagged")
	}
}

func TestFunctionBodyCallNotCountedAtTopLevel(t *testing.T) {
	if parseForEffects(t, `function f() { sideEffect(); }`) {
		t.Fatal("a call inside a function body should not count as a top-level side effect")
	}
}
