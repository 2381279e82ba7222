package util

import (
	"os"
	"path"
	"testing"
)

func TestAppendToFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	p := path.Join(dir, "a", "b", "out.jsonl")
	if err := AppendToFile(p, "one"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendToFile(p, "two", "three"); err != nil {
		t.Fatalf("append: %v", err)
	}
	bs, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(bs) != "one\ntwo\nthree\n" {
		t.Errorf("unexpected content %q", string(bs))
	}
}

func TestWriteToFileOverwrites(t *testing.T) {
	p := path.Join(t.TempDir(), "report.txt")
	WriteToFile(p, "first")
	if err := WriteToFile(p, "a", "b"); err != nil {
		t.Fatalf("write: %v", err)
	}
	bs, _ := os.ReadFile(p)
	if string(bs) != "a\nb\n" {
		t.Errorf("unexpected content %q", string(bs))
	}
}

func TestRemoveContentsKeeps(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"keep.txt", "drop.txt"} {
		WriteToFile(path.Join(dir, n), n)
	}
	os.MkdirAll(path.Join(dir, "sub", "deep"), 0755)

	if err := RemoveContents(dir, "keep.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "keep.txt" {
		t.Errorf("unexpected entries %v", entries)
	}
	if err := RemoveContents(path.Join(dir, "missing")); err != nil {
		t.Errorf("missing dir should not fail: %v", err)
	}
}
