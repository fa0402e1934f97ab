package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fundot/fundot/fundot"
)

func TestFmtCommandRequiresPath(t *testing.T) {
	err := fmtCommand(nil)
	if err == nil {
		t.Fatalf("expected path required error")
	}
	if !strings.Contains(err.Error(), "path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandCheckDetectsUnformattedFiles(t *testing.T) {
	path := writeSource(t, "(get   [1 ,2] 0)")
	err := fmtCommand([]string{"-check", path})
	if err == nil {
		t.Fatalf("expected formatting check failure")
	}
	if !strings.Contains(err.Error(), "need formatting") {
		t.Fatalf("unexpected check error: %v", err)
	}
}

func TestFmtCommandWriteFormatsFileInPlace(t *testing.T) {
	path := writeSource(t, "(get   [1 ,2] 0)\n{b:2,a:1}")
	if err := fmtCommand([]string{"-w", path}); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	if got := string(updated); got != "(get [1, 2] 0)\n{a: 1, b: 2}\n" {
		t.Fatalf("unexpected formatted output: %q", got)
	}
	if err := fmtCommand([]string{"-check", path}); err != nil {
		t.Fatalf("formatted file should pass check: %v", err)
	}
}

func TestFmtCommandPrintsFormattedOutput(t *testing.T) {
	path := writeSource(t, `( "a\tb"   null )`)
	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("fmt command failed: %v", err)
	}
	if out != "(\"a\\tb\" null)\n" {
		t.Fatalf("unexpected stdout output: %q", out)
	}
}

func TestFmtCommandReportsParseErrors(t *testing.T) {
	path := writeSource(t, "(unclosed")
	err := fmtCommand([]string{path})
	if err == nil || !strings.Contains(err.Error(), "unclosed (") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandFormatsDirectories(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	first := filepath.Join(root, "a.fd")
	second := filepath.Join(nested, "b.fd")
	ignored := filepath.Join(root, "notes.txt")
	for path, body := range map[string]string{
		first:   "[1 , 2]",
		second:  "{ k : v }",
		ignored: "[1 , 2]",
	} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	if err := fmtCommand([]string{"-w", root}); err != nil {
		t.Fatalf("fmt -w dir failed: %v", err)
	}
	for path, want := range map[string]string{
		first:   "[1, 2]\n",
		second:  "{k: v}\n",
		ignored: "[1 , 2]",
	} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(got) != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}

// sameForm compares by kind as well as by value, so 1 and 1.0 differ.
func sameForm(a, b fundot.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case fundot.KindList, fundot.KindVector:
		x, y := a.Items(), b.Items()
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !sameForm(x[i], y[i]) {
				return false
			}
		}
		return true
	case fundot.KindMap:
		if a.Map().Len() != b.Map().Len() {
			return false
		}
		for _, e := range a.Map().Entries() {
			other, ok := b.Map().Get(e.Key)
			if !ok || !sameForm(e.Value, other) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}

func TestFormatSourceReadsBackUnchanged(t *testing.T) {
	sources := []string{
		"[1.0, 2.5, 3]",
		"{1: a, 1.0: b}",
		"{null: 1, false: 2}",
		"(get {k : -0.5} k) 1e30 99999999999999999999",
		`"q\"uote" sym ) :`,
		"[,1 , (2 [3.0])]",
	}
	for _, src := range sources {
		formatted, err := formatSource(src)
		if err != nil {
			t.Fatalf("%q: format failed: %v", src, err)
		}
		before, err := fundot.ParseAll(src, fundot.ParseOptions{})
		if err != nil {
			t.Fatalf("%q: parse failed: %v", src, err)
		}
		after, err := fundot.ParseAll(formatted, fundot.ParseOptions{})
		if err != nil {
			t.Fatalf("%q: formatted output %q does not parse: %v", src, formatted, err)
		}
		if len(before) != len(after) {
			t.Fatalf("%q: %d forms became %d in %q", src, len(before), len(after), formatted)
		}
		for i := range before {
			if !sameForm(before[i], after[i]) {
				t.Fatalf("%q: form %d changed from %s to %s", src, i, before[i], after[i])
			}
		}
		again, err := formatSource(formatted)
		if err != nil || again != formatted {
			t.Fatalf("%q: formatting is not stable: %q then %q (%v)", src, formatted, again, err)
		}
	}
}

func TestFormatSourceKeepsFloats(t *testing.T) {
	got, err := formatSource("[1.0 , 2.5]\n{1: a, 1.0: b}")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if want := "[1.0, 2.5]\n{1.0: b, 1: a}\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatSourceRejectsInfiniteFloats(t *testing.T) {
	_, err := formatSource("ok\n[1e400]")
	if !errors.Is(err, fundot.ErrNoReadableForm) {
		t.Fatalf("expected ErrNoReadableForm, got %v", err)
	}
	if !strings.Contains(err.Error(), "form 2") {
		t.Fatalf("expected the failing form to be named, got %v", err)
	}
}

func TestFmtCommandListsStaleFiles(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "stale.fd")
	clean := filepath.Join(root, "clean.fd")
	hidden := filepath.Join(root, ".cache", "skip.fd")
	if err := os.MkdirAll(filepath.Dir(hidden), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for path, body := range map[string]string{
		stale:  "[1 ,2]",
		clean:  "[1, 2]\n",
		hidden: "[1 2]",
	} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{"-l", root})
	})
	if err != nil {
		t.Fatalf("fmt -l failed: %v", err)
	}
	if out != stale+"\n" {
		t.Fatalf("expected only %s, got %q", stale, out)
	}
}
