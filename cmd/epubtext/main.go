// Command epubtext appends the paragraph text of EPUB archives to a file.
//
// Usage:
//
//	epubtext [flags] [--] <archive>... <output>
//
// Flags must come before the positional arguments. "--" ends flag parsing,
// so archive or output paths that start with "-" can follow it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/simp-lee/epubtext"
	"github.com/simp-lee/epubtext/internal/config"
)

// Exit codes.
const (
	exitOK    = 0
	exitUsage = 1
	exitRun   = 2
)

const usageLine = "usage: epubtext [flags] [--] <archive>... <output>"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, os.Getenv))
}

// run executes the command and returns the process exit code. Logs and
// usage go to stderr.
func run(args []string, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("epubtext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageLine)
		fs.PrintDefaults()
	}

	var (
		configPath   string
		verbose      bool
		quiet        bool
		keepGoing    bool
		htmlEntities bool
		detectDRM    bool
	)
	fs.StringVar(&configPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&verbose, "v", false, "Verbose logging (one marker per paragraph)")
	fs.BoolVar(&quiet, "q", false, "Only log warnings and errors")
	fs.BoolVar(&keepGoing, "keep-going", false, "Skip archives that fail instead of aborting")
	fs.BoolVar(&htmlEntities, "html-entities", false, "Resolve HTML named entities such as &nbsp;")
	fs.BoolVar(&detectDRM, "detect-drm", false, "Fail archives whose content is DRM encrypted")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	pos := fs.Args()
	if len(pos) < 2 {
		fmt.Fprintln(stderr, usageLine)
		return exitUsage
	}
	archives, output := pos[:len(pos)-1], pos[len(pos)-1]

	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	var cfg config.Config
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			logger.Error().Err(err).Msg("load config")
			return exitUsage
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		logger.Error().Err(err).Msg("read environment")
		return exitUsage
	}

	// Flags win over file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			if verbose {
				cfg.LogLevel = zerolog.LevelDebugValue
			}
		case "q":
			if quiet {
				cfg.LogLevel = zerolog.LevelWarnValue
			}
		case "keep-going":
			cfg.KeepGoing = keepGoing
		case "html-entities":
			cfg.HTMLEntities = htmlEntities
		case "detect-drm":
			cfg.DetectDRM = detectDRM
		}
	})

	lvl, err := cfg.Level()
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return exitUsage
	}
	logger = logger.Level(lvl)

	stats, err := epubtext.Run(archives, output, cfg.Options(&logger))
	if err != nil {
		logger.Error().Err(err).
			Int("archives", stats.Archives).
			Int("lines", stats.Lines).
			Msg("extraction failed")
		return exitRun
	}
	logger.Info().
		Int("archives", stats.Archives).
		Int("documents", stats.Documents).
		Int("paragraphs", stats.Paragraphs).
		Int("lines", stats.Lines).
		Str("output", output).
		Msg("done")
	return exitOK
}
