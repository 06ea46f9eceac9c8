package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArchive_SaveHasRead(t *testing.T) {
	a := New(t.TempDir())

	if a.Has("student", "白子", 100) {
		t.Error("snapshot should not exist yet")
	}
	if err := a.Save("student", "白子", 100, []byte("# 白子\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !a.Has("student", "白子", 100) {
		t.Error("snapshot should exist after save")
	}

	data, err := a.Read("student", "白子", 100)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "# 白子\n" {
		t.Errorf("unexpected contents: %q", data)
	}
}

func TestArchive_Latest(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)

	kindDir := filepath.Join(dir, "student")
	if err := os.MkdirAll(kindDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, fn := range []string{"白子_7.md", "白子_10.md", "阿露_3.md", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(kindDir, fn), []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	latest, err := a.Latest("student", nil)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 entries, got %v", latest)
	}
	if filepath.Base(latest["白子"]) != "白子_10.md" {
		t.Errorf("白子: got %q", latest["白子"])
	}
	if filepath.Base(latest["阿露"]) != "阿露_3.md" {
		t.Errorf("阿露: got %q", latest["阿露"])
	}
}

func TestArchive_KindsIsolated(t *testing.T) {
	a := New(t.TempDir())

	if err := a.Save("school", "阿拜多斯", 100, []byte("# 阿拜多斯\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Save("student", "白子", 5, []byte("# 白子\n")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if a.Has("student", "阿拜多斯", 100) {
		t.Error("school snapshot must not be visible as a student")
	}

	latest, err := a.Latest("student", nil)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if _, ok := latest["阿拜多斯"]; ok {
		t.Errorf("school snapshot leaked into student listing: %v", latest)
	}
	if len(latest) != 1 {
		t.Fatalf("expected only the student page, got %v", latest)
	}
}

func TestArchive_LatestMissingDir(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "absent"))
	latest, err := a.Latest("student", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(latest) != 0 {
		t.Errorf("expected empty map, got %v", latest)
	}
}
