// Package epubtext extracts paragraph text from EPUB archives.
//
// An EPUB file is a ZIP archive of XHTML content documents. For every entry
// whose name ends in ".xhtml" (exact, case-sensitive), the package parses the
// entry as XML and writes the direct text of each paragraph element, one line
// per paragraph, to an output. Paragraphs are matched by local name "p" in any
// namespace, at any depth, in document order. Direct text is the character
// data between a paragraph's start tag and its first child element; text
// inside nested elements such as <em> is not included.
//
// # Appending to a file
//
// [Run] opens the output in append mode and processes each archive in order:
//
//	stats, err := epubtext.Run([]string{"a.epub", "b.epub"}, "out.txt", epubtext.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(stats.Lines, "lines appended")
//
// Existing output is never truncated, so running twice duplicates the text.
//
// # Writing elsewhere
//
// [NewExtractor] binds extraction to any [io.Writer]. Use
// [Extractor.ExtractFile] for a path or [Extractor.ExtractReader] for an
// [io.ReaderAt]:
//
//	var buf bytes.Buffer
//	e := epubtext.NewExtractor(&buf, epubtext.Options{})
//	if err := e.ExtractFile("book.epub"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors, matched with [errors.Is]:
//   - [ErrUsage] – no archive or no output path was given
//   - [ErrArchiveOpen] – an archive or one of its entries could not be read
//   - [ErrXMLParse] – a content document is not well-formed XML
//   - [ErrOutput] – the output could not be opened or written
//   - [ErrDRMProtected] – the archive is DRM encrypted (with [Options.DetectDRM])
//   - [ErrEntryTooLarge] – a content document exceeds [Options.MaxEntrySize]
//
// By default the first error aborts [Run]; text already appended stays in the
// output. Set [Options.KeepGoing] to skip failing archives instead.
package epubtext
