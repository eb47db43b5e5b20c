package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.md")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStripsBOM(t *testing.T) {
	path := writeFile(t, []byte("\xEF\xBB\xBF# Guide des données\n"))

	doc, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Text != "# Guide des données\n" {
		t.Errorf("Text = %q", doc.Text)
	}
	if !doc.HadBOM || doc.Encoding != "utf-8" || doc.TargetEncoding != "utf-8" {
		t.Errorf("doc = %+v", doc)
	}

	if err := doc.Save(doc.Text); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := os.ReadFile(path)
	if bytes.HasPrefix(got, bomUTF8) {
		t.Error("Save wrote a BOM")
	}
	if string(got) != "# Guide des données\n" {
		t.Errorf("file = %q", got)
	}
}

func TestLoadWithoutBOM(t *testing.T) {
	path := writeFile(t, []byte("plain"))
	doc, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.HadBOM || doc.Text != "plain" || doc.Size != 5 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestSaveDropsLeadingMarkerInText(t *testing.T) {
	path := writeFile(t, []byte("x"))
	doc, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Save("\uFEFFbody"); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "body" {
		t.Errorf("file = %q", got)
	}
}

func TestLoadUTF16BOM(t *testing.T) {
	path := writeFile(t, []byte{0xFF, 0xFE, 'h', 0, 'i', 0})
	doc, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Text != "hi" || doc.Encoding != "utf-16le" || !doc.HadBOM {
		t.Errorf("doc = %+v", doc)
	}
}

func TestLoadLegacyEncoding(t *testing.T) {
	path := writeFile(t, []byte("caf\xe9 cr\xe8me"))
	doc, err := Load(path, Options{SourceEncoding: "windows-1252"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Text != "café crème" || doc.Encoding != "windows-1252" {
		t.Errorf("doc = %+v", doc)
	}
	if err := doc.Save(doc.Text); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "café crème" {
		t.Errorf("file = %q, want UTF-8 output", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "bad.md")
	os.WriteFile(invalid, []byte("abc\xffdef"), 0o644)

	tests := []struct {
		name    string
		path    string
		opts    Options
		wantErr error
		wantMsg string
	}{
		{"missing", filepath.Join(dir, "absent.md"), Options{}, ErrRead, "absent.md"},
		{"directory", dir, Options{}, ErrRead, "is a directory"},
		{"invalid utf-8", invalid, Options{}, ErrEncoding, "byte 3"},
		{"unknown source encoding", invalid, Options{SourceEncoding: "klingon"}, ErrEncoding, "klingon"},
		{"unknown target encoding", invalid, Options{TargetEncoding: "klingon"}, ErrEncoding, "target"},
	}
	for _, tt := range tests {
		_, err := Load(tt.path, tt.opts)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("%s: err = %q, want mention of %q", tt.name, err, tt.wantMsg)
		}
	}
}

func TestSaveUnencodableText(t *testing.T) {
	path := writeFile(t, []byte("original"))
	doc, err := Load(path, Options{TargetEncoding: "windows-1252"})
	if err != nil {
		t.Fatal(err)
	}
	err = doc.Save("日本語")
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("Save err = %v, want ErrEncoding", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("file changed to %q after failed save", got)
	}
}

func TestSaveWriteError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	os.MkdirAll(dir, 0o755)
	path := filepath.Join(dir, "guide.md")
	os.WriteFile(path, []byte("text"), 0o644)

	doc, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	err = doc.Save("new text")
	if !errors.Is(err, ErrWrite) {
		t.Errorf("Save err = %v, want ErrWrite", err)
	}
}

func TestSaveKeepsModeAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	os.WriteFile(path, []byte("old"), 0o600)

	doc, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Save("new"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
	if doc.Text != "new" {
		t.Errorf("doc.Text = %q after save", doc.Text)
	}
}
