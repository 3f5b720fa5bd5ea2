package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ciftools/linguist/cifevents"
	"github.com/ciftools/linguist/dialect"
	"github.com/ciftools/linguist/emit"
	"github.com/ciftools/linguist/encoding"
	"github.com/ciftools/linguist/interceptor"
	"github.com/ciftools/linguist/walker"
	"github.com/ciftools/linguist/whitespace"
)

// Options is the fully resolved, validated set of settings one invocation
// runs with: built-in defaults (config.Default), overridden by
// linguist.yaml, overridden by command-line flags (spec.md §6).
type Options struct {
	InputFormat        string
	InputEncoding      string
	InputLineFolding   bool
	InputTextPrefixing bool

	OutputFormat        string
	OutputEncoding      string
	OutputLineFolding   bool
	OutputTextPrefixing bool

	Quiet  bool
	Strict bool

	InputPath  string // "" or "-" means stdin
	OutputPath string // "" or "-" means stdout
}

// ParseOptions is what a cifevents.Source implementation needs to know to
// decode input: the requested input dialect, the resolved character-set
// Converter, and whether it should honor the fold/prefix protocols on
// decode (spec.md §6's -l/-p flags).
type ParseOptions struct {
	InputFormat        string
	Decoder            encoding.Converter
	InputLineFolding   bool
	InputTextPrefixing bool
}

// SourceFactory builds a cifevents.Source over r. spec.md §1 lists the
// lexer/parser as an external collaborator out of this repository's
// scope; NewSource is the seam a real implementation plugs into. Tests in
// this package (and any embedding binary with a parser available) replace
// it; the default reports that none is wired.
type SourceFactory func(r io.Reader, opts ParseOptions) (cifevents.Source, error)

// NewSource is called by Run to obtain a Source for the input stream. It
// is a package variable, not a parameter of Run, so that a binary linking
// a real CIF parser can replace it once at program start (the same pattern
// the teacher project uses for DatabaseConfig.Open being swapped out in
// tests).
var NewSource SourceFactory = func(io.Reader, ParseOptions) (cifevents.Source, error) {
	return nil, fmt.Errorf("cli: no cifevents.Source implementation is wired into this build")
}

// Run executes one linguist invocation against already-resolved Options
// and returns the process exit code per spec.md §6.
func Run(opts Options, stdin io.Reader, stdout, stderr io.Writer, logger logrus.FieldLogger) int {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	in, closeIn, err := openInput(opts.InputPath, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer closeIn()

	out, closeOut, err := openOutput(opts.OutputPath, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer closeOut()

	dec, err := resolveEncoding(opts.InputEncoding)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	enc, err := resolveEncoding(opts.OutputEncoding)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	d, ok := dialect.ByName(opts.OutputFormat)
	if !ok {
		fmt.Fprintln(stderr, fmt.Errorf("cli: unknown output dialect %q", opts.OutputFormat))
		return 2
	}
	if err := validateInputFormat(opts.InputFormat); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	src, err := NewSource(in, ParseOptions{
		InputFormat:        opts.InputFormat,
		Decoder:            dec,
		InputLineFolding:   opts.InputLineFolding,
		InputTextPrefixing: opts.InputTextPrefixing,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	queue := whitespace.New()
	emitter := emit.New(&encodingWriter{w: out, conv: enc}, d, queue, emit.Options{
		AllowOutputFolding:   opts.OutputLineFolding,
		AllowOutputPrefixing: opts.OutputTextPrefixing,
	})
	ic := interceptor.New(emitter, interceptor.Options{
		HaltOnError: opts.Strict,
		Quiet:       opts.Quiet,
		Stderr:      stderr,
		Logger:      logger,
	})

	walkErr := walker.Walk(src, ic)
	if flushErr := emitter.Flush(); flushErr != nil && walkErr == nil {
		walkErr = flushErr
	}
	if walkErr == nil {
		walkErr = emitter.Err()
	}
	if walkErr != nil && !ic.Halted() {
		fmt.Fprintln(stderr, walkErr)
	}

	if !opts.Quiet {
		logger.WithFields(logrus.Fields{
			"errors": ic.ErrorCount(),
			"halted": ic.Halted(),
		}).Info("run complete")
	}

	return exitCode(walkErr, ic.ErrorCount())
}

// exitCode implements spec.md §6's four exit codes, given that Run already
// returns 2 directly for usage/setup failures before a walk is attempted:
// 3 if the walk was aborted before consuming all input (a propagated error,
// whether from strict mode or an emitter failure), 1 if it completed but
// recoverable parse errors were reported, 0 otherwise.
func exitCode(walkErr error, errorCount int) int {
	if walkErr != nil {
		return 3
	}
	if errorCount > 0 {
		return 1
	}
	return 0
}

// resolveEncoding treats "auto" as UTF-8: detecting an unlabeled encoding
// from a byte-order mark or heuristic is the parser's job (spec.md §1), not
// this CLI's, so "auto" simply defers to the always-available case.
func resolveEncoding(name string) (encoding.Converter, error) {
	if name == "auto" {
		return encoding.UTF8, nil
	}
	return encoding.Lookup(name)
}

func openInput(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: cannot open input file %q: %w", path, err)
	}
	return f, f.Close, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: cannot open output file %q: %w", path, err)
	}
	return f, f.Close, nil
}

// encodingWriter re-encodes the UTF-8 bytes the emitter writes into the
// output character encoding before forwarding to w (spec.md §6's -E flag).
type encodingWriter struct {
	w    io.Writer
	conv encoding.Converter
}

func (e *encodingWriter) Write(p []byte) (int, error) {
	encoded, err := e.conv.Encode(string(p))
	if err != nil {
		return 0, err
	}
	if _, err := e.w.Write(encoded); err != nil {
		return 0, err
	}
	return len(p), nil
}
