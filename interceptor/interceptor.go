// Package interceptor implements the Error Interceptor of spec.md §4.6: a
// walker.Handler decorator that sits between the parser and the emitter,
// deciding whether a reported parse error halts the walk or is merely
// counted and logged, and nudging the emitter to synthesize a dummy packet
// for the one recoverable error spec.md names explicitly (EmptyLoop).
package interceptor

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ciftools/linguist/cifevents"
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/walker"
)

// emptyLoopCode is the one recoverable parse-error code spec.md §4.6 singles
// out: a loop declared with no packets, which the emitter compensates for by
// synthesizing one all-Unknown packet (Emitter.RequestSynthesizePacket).
const emptyLoopCode = "EmptyLoop"

// synthesizer is the narrow interface the wrapped handler may implement to
// receive the EmptyLoop compensation signal; emit.Emitter implements it.
// Handlers that don't are simply never asked.
type synthesizer interface {
	RequestSynthesizePacket()
}

// ReportedError is one parse error the interceptor decided not to halt on,
// formatted the way sqlparser.Error/SQLCodeParseErrors.Error() render a
// position plus message.
type ReportedError struct {
	Code       string
	Line, Col  int
	SampleText string
}

func (e ReportedError) Error() string {
	if e.SampleText == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Code)
	}
	return fmt.Sprintf("%d:%d: %s (near %q)", e.Line, e.Col, e.Code, e.SampleText)
}

// ReportedErrors joins every non-fatal parse error accumulated over a walk,
// mirroring the teacher's SQLCodeParseErrors.Error() multi-error join style.
type ReportedErrors struct {
	Errors []ReportedError
}

func (e ReportedErrors) Error() string {
	var b strings.Builder
	b.WriteString("parse errors:\n\n")
	for _, re := range e.Errors {
		b.WriteString(re.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

// Options configures an Interceptor's policy, spec.md §4.6 plus the CLI's
// -s/--strict and -q/--quiet flags (spec.md §6).
type Options struct {
	// HaltOnError aborts the walk on the first parse error (-s/--strict).
	HaltOnError bool
	// Quiet suppresses the per-error diagnostic message (-q/--quiet); errors
	// are still counted and still reach Logger.
	Quiet bool
	// Stderr receives one formatted line per non-halting error, unless Quiet.
	// A nil Stderr disables printing regardless of Quiet.
	Stderr io.Writer
	// Logger receives a structured log entry per error (Warn) or the halt
	// (Error). A nil Logger falls back to logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// Interceptor wraps a walker.Handler, forwarding every structural callback
// unchanged and applying spec.md §4.6's policy to ParseError, and to a
// DisallowedValue reported from Item:
//   - halt_on_error set: log at Error level and abort the walk.
//   - otherwise: count the error, log at Warn level, print it to Stderr
//     unless quiet, poke the wrapped handler's synthesizer for EmptyLoop,
//     and tell the walker to continue.
type Interceptor struct {
	inner  walker.Handler
	synth  synthesizer
	opts   Options
	logger logrus.FieldLogger

	errors []ReportedError
	halted bool
}

// New wraps inner with the Error Interceptor policy described by opts. inner
// is asked to synthesize a packet (via the synthesizer interface) whenever a
// recoverable EmptyLoop error is reported and the walk is not halted.
func New(inner walker.Handler, opts Options) *Interceptor {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s, _ := inner.(synthesizer)
	return &Interceptor{inner: inner, synth: s, opts: opts, logger: logger}
}

// Errors returns every error reported so far (parse errors and
// DisallowedValue rejections, including one that halted the walk), in
// report order.
func (i *Interceptor) Errors() []ReportedError { return i.errors }

// ErrorCount returns the number of parse errors reported, including the one
// that halted the walk if HaltOnError is set.
func (i *Interceptor) ErrorCount() int { return len(i.errors) }

// Halted reports whether a reported error aborted the walk (HaltOnError set
// and at least one ParseError event or DisallowedValue rejection occurred).
func (i *Interceptor) Halted() bool { return i.halted }

func (i *Interceptor) CifStart() walker.Directive { return i.inner.CifStart() }
func (i *Interceptor) CifEnd() walker.Directive   { return i.inner.CifEnd() }

func (i *Interceptor) BlockStart(code string) walker.Directive { return i.inner.BlockStart(code) }
func (i *Interceptor) BlockEnd() walker.Directive               { return i.inner.BlockEnd() }

func (i *Interceptor) FrameStart(code string) walker.Directive { return i.inner.FrameStart(code) }
func (i *Interceptor) FrameEnd() walker.Directive               { return i.inner.FrameEnd() }

func (i *Interceptor) LoopStart(info cifevents.LoopStartInfo) walker.Directive {
	return i.inner.LoopStart(info)
}
func (i *Interceptor) LoopEnd() walker.Directive { return i.inner.LoopEnd() }

func (i *Interceptor) PacketStart() walker.Directive { return i.inner.PacketStart() }
func (i *Interceptor) PacketEnd() walker.Directive   { return i.inner.PacketEnd() }

// Item forwards to inner and, per spec.md §8 scenario 3, applies the same
// halt-or-continue policy as ParseError to a DisallowedValue it reports:
// a value the selected output dialect cannot express is recoverable in
// non-strict mode (the rejected value is not written, the walk continues) and fatal
// under -s/--strict. Any other error inner returns (I/O, internal) is
// passed through unchanged; only the output-dialect mismatch is this
// package's concern to downgrade.
func (i *Interceptor) Item(info cifevents.ItemInfo) walker.Directive {
	d := i.inner.Item(info)
	err := d.Err()
	if err == nil || !cerrors.Is(err, cerrors.DisallowedValue) {
		return d
	}

	sample := err.Error()
	if ce, ok := err.(cerrors.CIFError); ok {
		sample = ce.Message
	}
	reported := ReportedError{Code: cerrors.DisallowedValue.String(), SampleText: sample}
	return i.report(reported, logrus.Fields{"code": reported.Code}, "value rejected by output dialect")
}

func (i *Interceptor) Whitespace(text string) { i.inner.Whitespace(text) }

// ParseError implements spec.md §4.6's policy. It never forwards the error
// to inner: the wrapped handler (the emitter) has no ParseError behavior of
// its own beyond the EmptyLoop compensation, which is reached here through
// the synthesizer interface instead.
func (i *Interceptor) ParseError(info cifevents.ParseErrorInfo) walker.Directive {
	reported := ReportedError{Code: info.Code, Line: info.Line, Col: info.Col, SampleText: info.SampleText}
	fields := logrus.Fields{"code": info.Code, "line": info.Line, "col": info.Col}

	d := i.report(reported, fields, "parse error")
	if d.Err() == nil && info.Code == emptyLoopCode && i.synth != nil {
		i.synth.RequestSynthesizePacket()
	}
	return d
}

// report implements spec.md §4.6's shared halt-or-continue policy: record
// reported, log it (Error and abort if HaltOnError, otherwise Warn), print
// it to Stderr unless quiet, and tell the walker to continue or abort
// accordingly.
func (i *Interceptor) report(reported ReportedError, fields logrus.Fields, logMsg string) walker.Directive {
	i.errors = append(i.errors, reported)

	if i.opts.HaltOnError {
		i.halted = true
		i.logger.WithFields(fields).Error(logMsg + ", halting (strict mode)")
		return walker.Error(reported)
	}

	i.logger.WithFields(fields).Warn(logMsg)
	if !i.opts.Quiet && i.opts.Stderr != nil {
		fmt.Fprintln(i.opts.Stderr, reported.Error())
	}
	return walker.Continue()
}
