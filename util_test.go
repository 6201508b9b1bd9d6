package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadClasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coco.names")
	content := "person\nbicycle\ncar\n\n  \ntruck\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	classes, err := readClasses(path)
	if err != nil {
		t.Fatalf("readClasses: %v", err)
	}

	want := []string{"person", "bicycle", "car", "truck"}
	if !reflect.DeepEqual(classes, want) {
		t.Errorf("got %v, want %v", classes, want)
	}
}

func TestReadClassesMissingFile(t *testing.T) {
	if _, err := readClasses(filepath.Join(t.TempDir(), "nope.names")); err == nil {
		t.Fatal("expected error for missing classes file")
	}
}

func TestReadClassesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.names")
	if err := os.WriteFile(path, []byte("\n \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readClasses(path); err == nil {
		t.Fatal("expected error for classes file without labels")
	}
}
