package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandTargetsWithGlob(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"top.sv", "sub.sv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("-- "+name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	targets, err := ExpandTargets(root, []string{"top.sv", "*.sv"})
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	want := []string{"top.sv", "sub.sv"}
	if len(targets) != len(want) {
		t.Fatalf("expected %v, got %v", want, targets)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, targets)
		}
	}
}

func TestExpandTargetsNoMatch(t *testing.T) {
	root := t.TempDir()
	if _, err := ExpandTargets(root, []string{"*.sv"}); err == nil {
		t.Fatalf("expected error for a pattern with no matches")
	}
}

func TestExpandTargetsPlainNamesKept(t *testing.T) {
	targets, err := ExpandTargets(t.TempDir(), []string{"missing.sv"})
	if err != nil {
		t.Fatalf("ExpandTargets: %v", err)
	}
	if len(targets) != 1 || targets[0] != "missing.sv" {
		t.Fatalf("expected plain name to pass through, got %v", targets)
	}
}

func TestFilterTargets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ignore = []string{"*_tb.sv", "rtl/old.sv"}

	got := cfg.FilterTargets([]string{"top.sv", "top_tb.sv", "rtl/old.sv", "rtl/new.sv"})
	want := []string{"top.sv", "rtl/new.sv"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
