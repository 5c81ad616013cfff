package jsparser

import (
	"testing"

	"bennypowers.dev/fob/moduleid"
	"bennypowers.dev/fob/sourcetype"
)

func TestParseStaticImports(t *testing.T) {
	src := []byte(`import Foo, { bar, baz as qux } from "./foo";
import * as ns from "lib";
export const x = 1;
`)
	m, err := Parse(moduleid.FromPath("/repo/a.ts"), "/repo/a.ts", src, sourcetype.TypeScript, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Imports) == 0 {
		t.Fatal("expected at least one import")
	}
}

func TestParseDynamicImport(t *testing.T) {
	src := []byte(`const mod = await import("./lazy");`)
	m, err := Parse(moduleid.FromPath("/repo/a.ts"), "/repo/a.ts", src, sourcetype.TypeScript, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, imp := range m.Imports {
		if imp.Kind.String() == "dynamic" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a dynamic import to be recorded")
	}
}

func TestParseNonScriptIsLeaf(t *testing.T) {
	m, err := Parse(moduleid.FromPath("/repo/data.json"), "/repo/data.json", []byte(`{"a":1}`), sourcetype.JSON, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Imports != nil || m.Exports != nil {
		t.Fatal("expected a bare leaf module for JSON")
	}
}

func TestParseRejectsOversizedFile(t *testing.T) {
	big := make([]byte, MaxFileSize+1)
	_, err := Parse(moduleid.FromPath("/repo/big.ts"), "/repo/big.ts", big, sourcetype.TypeScript, false)
	if err == nil {
		t.Fatal("expected FileTooLarge error")
	}
}

func TestParseVueSFCExtractsScript(t *testing.T) {
	src := []byte(`<template><div/></template>
<script setup lang="ts">
export const greeting = "hi"
</script>
`)
	m, err := Parse(moduleid.FromPath("/repo/App.vue"), "/repo/App.vue", src, sourcetype.ContainerVue, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, exp := range m.Exports {
		if exp.Name == "greeting" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the extracted script's export to be recorded")
	}
}
