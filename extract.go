package epubtext

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Options controls extraction. The zero value reproduces the plain
// behaviour: abort on the first bad archive, strict XML, no entry size
// limit, no DRM inspection, no logging.
type Options struct {
	// Logger receives progress traces: each content document at info level
	// and a marker per paragraph element at debug level. Nil disables them.
	Logger *zerolog.Logger

	// KeepGoing skips an archive that fails to open or parse instead of
	// aborting the run. Failures are returned joined once all archives have
	// been tried. Output errors always abort.
	KeepGoing bool

	// HTMLEntities resolves HTML named entities such as &nbsp; instead of
	// rejecting them as undefined.
	HTMLEntities bool

	// MaxEntrySize is the decompressed size limit for one content document.
	// Zero or a negative value disables the limit; DefaultMaxEntrySize is a
	// sensible guard against zip bombs.
	MaxEntrySize int64

	// DetectDRM inspects META-INF/sinf.xml and META-INF/encryption.xml
	// before any entry is read, and fails the archive with ErrDRMProtected
	// when anything other than fonts is encrypted.
	DetectDRM bool
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Stats counts what an Extractor has processed so far.
type Stats struct {
	Archives   int // archives fully processed
	Skipped    int // archives skipped under KeepGoing
	Documents  int // .xhtml entries parsed
	Paragraphs int // paragraph elements found
	Lines      int // lines written
}

// Extractor appends paragraph text from EPUB archives to a writer.
//
// An Extractor is not safe for concurrent use by multiple goroutines.
type Extractor struct {
	w     io.Writer
	opts  Options
	log   *zerolog.Logger
	stats Stats
}

// NewExtractor returns an Extractor writing to w. Each extracted paragraph
// is written to w with a single call, text followed by "\n".
func NewExtractor(w io.Writer, opts Options) *Extractor {
	return &Extractor{w: w, opts: opts, log: opts.logger()}
}

// Stats returns the counters accumulated so far.
func (e *Extractor) Stats() Stats {
	return e.stats
}

// ExtractFile opens the archive at path, appends the direct text of every
// paragraph in its .xhtml entries, and closes it.
func (e *Extractor) ExtractFile(path string) error {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("epubtext: open %s: %w: %w", path, ErrArchiveOpen, err)
	}
	defer zrc.Close()

	if err := e.extract(&zrc.Reader); err != nil {
		return fmt.Errorf("epubtext: %s: %w", path, err)
	}
	return nil
}

// ExtractReader is ExtractFile for an archive held in r. The caller is
// responsible for the lifetime of r.
func (e *Extractor) ExtractReader(r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("epubtext: open zip: %w: %w", ErrArchiveOpen, err)
	}
	return e.extract(zr)
}

func (e *Extractor) extract(zr *zip.Reader) error {
	if e.opts.DetectDRM {
		fonts, err := checkDRM(zr)
		if err != nil {
			return err
		}
		if len(fonts) > 0 {
			e.log.Warn().Strs("fonts", fonts).Msg("font obfuscation detected; fonts are not read")
		}
	}

	// zr.File is in central directory order.
	for _, f := range zr.File {
		if !IsContentDocument(f.Name) {
			continue
		}
		if err := e.extractEntry(f); err != nil {
			return err
		}
	}
	e.stats.Archives++
	return nil
}

// extractEntry parses one content document and writes its paragraphs.
func (e *Extractor) extractEntry(f *zip.File) error {
	e.log.Info().Str("entry", f.Name).Msg("reading")

	rc, err := openEntry(f, e.opts.MaxEntrySize)
	if err != nil {
		return err
	}
	defer rc.Close()

	root, err := Parse(rc, e.opts)
	if err != nil {
		if !errors.Is(err, ErrXMLParse) && !errors.Is(err, ErrEntryTooLarge) {
			err = fmt.Errorf("%w: %w", ErrArchiveOpen, err)
		}
		return fmt.Errorf("epubtext: entry %s: %w", f.Name, err)
	}
	e.stats.Documents++

	for _, p := range root.FindAll("p") {
		e.stats.Paragraphs++
		e.log.Debug().Str("entry", f.Name).Msg("!")
		if p.Text == "" {
			continue
		}
		if _, err := io.WriteString(e.w, p.Text+"\n"); err != nil {
			return fmt.Errorf("epubtext: write: %w: %w", ErrOutput, err)
		}
		e.stats.Lines++
	}
	return nil
}

// Run appends the paragraph text of every archive, in order, to the file
// at output, creating it if needed. Existing content is never truncated.
//
// Without Options.KeepGoing the first failing archive aborts the run.
// Whatever was appended before the failure stays in the output file.
func Run(archives []string, output string, opts Options) (Stats, error) {
	if len(archives) == 0 || output == "" {
		return Stats{}, ErrUsage
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Stats{}, fmt.Errorf("epubtext: open output: %w: %w", ErrOutput, err)
	}
	bw := bufio.NewWriter(f)
	e := NewExtractor(bw, opts)

	runErr := e.extractAll(archives)

	if err := bw.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("epubtext: flush output: %w: %w", ErrOutput, err)
	}
	if err := f.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("epubtext: close output: %w: %w", ErrOutput, err)
	}
	return e.Stats(), runErr
}

func (e *Extractor) extractAll(archives []string) error {
	var skipped []error
	for _, path := range archives {
		err := e.ExtractFile(path)
		if err == nil {
			continue
		}
		if !e.opts.KeepGoing || errors.Is(err, ErrOutput) {
			return err
		}
		e.log.Error().Err(err).Str("archive", path).Msg("skipping archive")
		e.stats.Skipped++
		skipped = append(skipped, err)
	}
	return errors.Join(skipped...)
}
