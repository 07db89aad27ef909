package epubtext

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// contentSuffix selects the entries that are parsed for paragraphs.
// The match is exact and case-sensitive.
const contentSuffix = ".xhtml"

// DefaultMaxEntrySize is the suggested value for Options.MaxEntrySize.
// 256 MB.
const DefaultMaxEntrySize int64 = 256 * 1024 * 1024

// utf8BOM is the byte order mark some authoring tools prepend to XHTML.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsContentDocument reports whether an archive entry name ends in ".xhtml".
// "chapter.XHTML" and "chapter.html" do not qualify.
func IsContentDocument(name string) bool {
	return strings.HasSuffix(name, contentSuffix)
}

// findFileInsensitive looks up a ZIP entry by path, first trying an exact match,
// then falling back to a case-insensitive comparison.
// Returns nil if no match is found.
func findFileInsensitive(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// skipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func skipBOM(r io.Reader) *bufio.Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// stripBOM removes a leading UTF-8 BOM from data, if present.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// openEntry opens a ZIP entry for streaming. A limit of zero or below
// disables the size guard. Only the declared size needs checking: archive/zip fails
// reads that decompress past it with zip.ErrFormat.
func openEntry(f *zip.File, limit int64) (io.ReadCloser, error) {
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("epubtext: entry %s: %d bytes (max %d): %w",
			f.Name, f.UncompressedSize64, limit, ErrEntryTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epubtext: open entry %s: %w: %w", f.Name, ErrArchiveOpen, err)
	}
	return rc, nil
}
