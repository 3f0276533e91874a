package timedtext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOrdersAssetsAndComputesIDs(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeFile(t, dir, "subtitle.xml", []byte("<SubtitleReel/>"))
	writeFile(t, dir, "b.png", []byte("png-b-bytes"))
	writeFile(t, dir, "a.png", []byte("png-a-bytes"))

	r, err := Load(xmlPath, dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(r.XML) != "<SubtitleReel/>" {
		t.Errorf("XML = %q", r.XML)
	}
	if len(r.Assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(r.Assets))
	}
	if filepath.Base(r.Assets[0].Path) != "a.png" || filepath.Base(r.Assets[1].Path) != "b.png" {
		t.Errorf("assets not sorted: %s, %s", r.Assets[0].Path, r.Assets[1].Path)
	}
	if r.Assets[0].ID == (ul.UUID{}) {
		t.Error("expected a non-zero content-addressed ID")
	}

	again, err := Load(xmlPath, dir)
	if err != nil {
		t.Fatal(err)
	}
	if again.Assets[0].ID != r.Assets[0].ID {
		t.Error("expected the same PNG bytes to produce the same UUID across loads")
	}
}

func TestFramesAndResourceIDsOrdering(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeFile(t, dir, "subtitle.xml", []byte("<doc/>"))
	writeFile(t, dir, "one.png", []byte("one"))
	writeFile(t, dir, "two.png", []byte("two"))

	r, err := Load(xmlPath, dir)
	if err != nil {
		t.Fatal(err)
	}
	frames := r.Frames()
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if string(frames[0]) != "<doc/>" {
		t.Errorf("frame 0 should be the XML document, got %q", frames[0])
	}
	ids := r.ResourceIDs()
	if len(ids) != 2 {
		t.Fatalf("got %d resource IDs, want 2", len(ids))
	}
	if ids[0] != r.Assets[0].ID || ids[1] != r.Assets[1].ID {
		t.Error("ResourceIDs order does not match Assets order")
	}
}

func TestLoadWithoutAssetDir(t *testing.T) {
	dir := t.TempDir()
	xmlPath := writeFile(t, dir, "subtitle.xml", []byte("<doc/>"))

	r, err := Load(xmlPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Assets) != 0 {
		t.Errorf("expected no assets, got %d", len(r.Assets))
	}
	if len(r.Frames()) != 1 {
		t.Error("expected a single XML-only frame")
	}
}
