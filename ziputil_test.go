package epubtext

import (
	"archive/zip"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestIsContentDocument(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"chapter1.xhtml", true},
		{"OEBPS/Text/ch01.xhtml", true},
		{".xhtml", true},
		{"chapter1.XHTML", false},
		{"chapter1.html", false},
		{"chapter1.xhtml.bak", false},
		{"styles.css", false},
		{"content.opf", false},
		{"xhtml", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsContentDocument(tt.name); got != tt.want {
			t.Errorf("IsContentDocument(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestFindFileInsensitive(t *testing.T) {
	zr := buildTestZip(t,
		entry{"META-INF/encryption.xml", "<encryption/>"},
		entry{"File.txt", "exact"},
		entry{"file.txt", "lower"},
	)

	tests := []struct {
		name   string
		lookup string
		want   string // expected matched Name, or "" if nil
	}{
		{"exact match", "META-INF/encryption.xml", "META-INF/encryption.xml"},
		{"case insensitive", "meta-inf/ENCRYPTION.XML", "META-INF/encryption.xml"},
		{"prefers exact", "file.txt", "file.txt"},
		{"not found", "nonexistent.file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findFileInsensitive(zr, tt.lookup)
			if tt.want == "" {
				if got != nil {
					t.Errorf("findFileInsensitive(%q) = %q; want nil", tt.lookup, got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("findFileInsensitive(%q) = nil; want %q", tt.lookup, tt.want)
			}
			if got.Name != tt.want {
				t.Errorf("findFileInsensitive(%q).Name = %q; want %q", tt.lookup, got.Name, tt.want)
			}
		})
	}
}

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"with BOM", "\xEF\xBB\xBF<p/>", "<p/>"},
		{"without BOM", "<p/>", "<p/>"},
		{"short input", "ab", "ab"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(skipBOM(strings.NewReader(tt.in)))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("skipBOM(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripBOM(t *testing.T) {
	if got := stripBOM([]byte("\xEF\xBB\xBFabc")); string(got) != "abc" {
		t.Errorf("stripBOM = %q; want %q", got, "abc")
	}
	if got := stripBOM([]byte("abc")); string(got) != "abc" {
		t.Errorf("stripBOM = %q; want %q", got, "abc")
	}
}

func TestOpenEntry_WithinLimit(t *testing.T) {
	zr := buildTestZip(t, entry{"a.xhtml", "0123456789"})
	rc, err := openEntry(zr.File[0], 10)
	if err != nil {
		t.Fatalf("openEntry: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read exactly-sized entry: %v", err)
	}
	if string(data) != "0123456789" {
		t.Errorf("data = %q", data)
	}
}

func TestOpenEntry_DeclaredSizeTooLarge(t *testing.T) {
	zr := buildTestZip(t, entry{"a.xhtml", strings.Repeat("x", 100)})
	_, err := openEntry(zr.File[0], 50)
	if !errors.Is(err, ErrEntryTooLarge) {
		t.Fatalf("openEntry error = %v; want ErrEntryTooLarge", err)
	}
}

func TestOpenEntry_ForgedSize(t *testing.T) {
	// A header that understates the entry size must not let more bytes
	// through than it declares.
	zr := buildTestZip(t, entry{"a.xhtml", strings.Repeat("x", 4096)})
	f := zr.File[0]
	f.UncompressedSize64 = 10

	rc, err := openEntry(f, 100)
	if err != nil {
		t.Fatalf("openEntry: %v", err)
	}
	defer rc.Close()
	if _, err := io.ReadAll(rc); !errors.Is(err, zip.ErrFormat) {
		t.Fatalf("read error = %v; want zip.ErrFormat", err)
	}
}

func TestOpenEntry_NoLimit(t *testing.T) {
	zr := buildTestZip(t, entry{"a.xhtml", strings.Repeat("x", 1000)})
	rc, err := openEntry(zr.File[0], -1)
	if err != nil {
		t.Fatalf("openEntry: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil || len(data) != 1000 {
		t.Fatalf("ReadAll = %d bytes, %v; want 1000, nil", len(data), err)
	}
}
