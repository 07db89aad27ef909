package epubtext

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// entry is one file of a test archive. Entries are written in slice order,
// which becomes the central directory order.
type entry struct {
	name    string
	content string
}

// buildTestArchive returns the bytes of a ZIP archive holding entries.
// It calls t.Fatal on any error.
func buildTestArchive(t testing.TB, entries ...entry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("buildTestArchive: create %s: %v", e.name, err)
		}
		if _, err := io.WriteString(fw, e.content); err != nil {
			t.Fatalf("buildTestArchive: write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestArchive: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildTestZip is buildTestArchive opened as a *zip.Reader.
func buildTestZip(t testing.TB, entries ...entry) *zip.Reader {
	t.Helper()
	data := buildTestArchive(t, entries...)
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open reader: %v", err)
	}
	return r
}

// buildTestEPubFile writes an archive to a temporary directory under name
// and returns its path.
func buildTestEPubFile(t testing.TB, name string, entries ...entry) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(fp, buildTestArchive(t, entries...), 0o644); err != nil {
		t.Fatalf("buildTestEPubFile: write file: %v", err)
	}
	return fp
}

// xhtml wraps body in a namespaced XHTML document.
func xhtml(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>t</title></head>
<body>` + body + `</body>
</html>`
}

// readOutput returns the content of the file at path.
func readOutput(t testing.TB, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
