package epubtext

import "errors"

// Sentinel errors returned by the epubtext package. Returned errors wrap
// one of these together with the underlying cause, so callers can test
// with errors.Is and still reach the zip, xml or os error beneath.
var (
	// ErrUsage indicates the caller supplied no input archive or no
	// output path.
	ErrUsage = errors.New("epubtext: need at least one archive and an output path")

	// ErrArchiveOpen indicates an input archive could not be opened
	// (missing file, not a ZIP container, unreadable entry).
	ErrArchiveOpen = errors.New("epubtext: cannot open archive")

	// ErrXMLParse indicates a content document is not well-formed XML.
	ErrXMLParse = errors.New("epubtext: malformed content document")

	// ErrOutput indicates the output file could not be opened or written.
	ErrOutput = errors.New("epubtext: output error")

	// ErrDRMProtected indicates the archive is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be read.
	ErrDRMProtected = errors.New("epubtext: archive is DRM protected")

	// ErrEntryTooLarge indicates a content document exceeds the configured
	// decompressed size limit.
	ErrEntryTooLarge = errors.New("epubtext: entry too large")
)
