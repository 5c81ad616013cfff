package diagnostic

import "testing"

func TestErrorString(t *testing.T) {
	e := NoEntries()
	if e.Error() != "NoEntries: no entry points were provided" {
		t.Fatalf("got %q", e.Error())
	}

	withPos := UnclosedScriptTag("App.vue", Position{Line: 3, Column: 1, Offset: 42})
	want := "UnclosedScriptTag: unclosed <script> tag (App.vue:3:1)"
	if withPos.Error() != want {
		t.Fatalf("got %q want %q", withPos.Error(), want)
	}
}

func TestMultipleCollapsesSingle(t *testing.T) {
	e := NoEntries()
	got := Multiple([]*Error{e})
	if got != e {
		t.Fatal("Multiple with one error should return it unwrapped")
	}
}

func TestMultipleGroups(t *testing.T) {
	errs := []*Error{NoEntries(), InvalidConfig("bad cwd")}
	got := Multiple(errs)
	if got.Tag != TagMultiple {
		t.Fatalf("got tag %v", got.Tag)
	}
	if len(got.Children) != 2 {
		t.Fatalf("got %d children", len(got.Children))
	}
}

func TestWrapEnvelope(t *testing.T) {
	env := Wrap(NoEntries())
	if env.Version != EnvelopeVersion {
		t.Fatalf("got version %d", env.Version)
	}
	if env.Error.Tag != TagNoEntries {
		t.Fatalf("got tag %v", env.Error.Tag)
	}
}

func TestMissingExportHint(t *testing.T) {
	e := MissingExport("a.ts", "foo", []string{"bar", "baz"})
	if e.Tag != TagMissingExport {
		t.Fatalf("got tag %v", e.Tag)
	}
	if len(e.AvailableExports) != 2 {
		t.Fatalf("got %v", e.AvailableExports)
	}
}
