package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "out.csv")
	if err := SafeWriteFile(p, []byte("a\n")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("b\n")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "b\n" {
		t.Fatalf("content = %q, want %q", b, "b\n")
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.csv")
	ok, err := FileExists(p)
	if err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ok, _ := FileExists(p); !ok {
		t.Fatalf("expected file to exist")
	}
	if ok, _ := FileExists(dir); ok {
		t.Fatalf("directory reported as file")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("run1", "analysis.png"); got != "run1_analysis.png" {
		t.Fatalf("OutputPath = %q", got)
	}
}
