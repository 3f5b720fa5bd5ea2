// Package emit implements the whitespace-preserving CIF serializer of
// spec.md §4.5: a walker.Handler that consumes structural events plus the
// whitespace queue and writes a syntactically valid CIF of the chosen
// dialect, folding and prefixing text fields as needed to respect the
// line-length limit.
package emit

import (
	"io"
	"strings"

	"github.com/ciftools/linguist/cifevents"
	"github.com/ciftools/linguist/dialect"
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
	"github.com/ciftools/linguist/walker"
	"github.com/ciftools/linguist/whitespace"
)

// containerDepth tracks whether the emitter is above any container, inside
// a block, or inside a save frame, matching the InBlock/InFrame states of
// spec.md §4.5's state-machine table.
type containerDepth int

const (
	depthTop containerDepth = iota
	depthBlock
	depthFrame
)

// Options configures an Emitter's behavior beyond the dialect itself.
type Options struct {
	// AllowOutputFolding permits the emitter to line-fold overlong text
	// fields (the `-L`/`--output-line-folding` flag, spec.md §6).
	AllowOutputFolding bool
	// AllowOutputPrefixing permits the emitter to apply the text-prefixing
	// protocol (the `-P`/`--output-text-prefixing` flag).
	AllowOutputPrefixing bool
}

// Emitter implements walker.Handler, writing the CIF serialization of
// whatever structural events it is driven with, in the order the walker
// delivers them.
type Emitter struct {
	walker.BaseHandler

	lw      *lineWriter
	queue   *whitespace.Queue
	dialect dialect.Dialect

	allowOutputFolding   bool
	allowOutputPrefixing bool

	atStart          bool
	depth            containerDepth
	inLoop           bool
	synthesizePacket bool

	err error
}

// New returns an Emitter that writes d's dialect to w, consuming whitespace
// from queue as it goes.
func New(w io.Writer, d dialect.Dialect, queue *whitespace.Queue, opts Options) *Emitter {
	return &Emitter{
		lw:                   newLineWriter(w, dialect.MaxLineLength),
		queue:                queue,
		dialect:              d,
		allowOutputFolding:   opts.AllowOutputFolding,
		allowOutputPrefixing: opts.AllowOutputPrefixing,
		atStart:              true,
	}
}

// RequestSynthesizePacket is called by the error interceptor when the
// parser reports a recoverable EmptyLoop error (spec.md §4.6), so the next
// loop-start the emitter sees writes the dummy all-`?` packet spec.md §4.5
// describes.
func (e *Emitter) RequestSynthesizePacket() { e.synthesizePacket = true }

// Err returns the first error the emitter encountered, or nil.
func (e *Emitter) Err() error { return e.err }

// Flush pushes any buffered output to the underlying writer. Call after
// driving the walker to completion.
func (e *Emitter) Flush() error { return e.lw.flush() }

func (e *Emitter) fail(err error) walker.Directive {
	if e.err == nil {
		e.err = err
	}
	return walker.Error(err)
}

// itemFail reports an error from writing one Item's value. A
// DisallowedValue is a per-value rejection, not a broken writer: an
// Interceptor may choose to downgrade it to a logged, counted error and
// keep walking (spec.md §8 scenario 3's non-strict case), so it is
// surfaced through the Directive without latching e.err the way fail
// does for genuine I/O or internal failures.
func (e *Emitter) itemFail(err error) walker.Directive {
	if cerrors.Is(err, cerrors.DisallowedValue) {
		return walker.Error(err)
	}
	return e.fail(err)
}

// writeToken writes a structural token (a container header, `loop_`, a
// data name), preceded by whitespace taken from the queue or synthesized
// if none is cached (spec.md §4.5 "Writing a token with cached
// whitespace").
func (e *Emitter) writeToken(token string) error {
	if run, ok := e.queue.Consume(); ok {
		if err := e.lw.raw(run.Text()); err != nil {
			return err
		}
	} else if err := e.lw.ensureSpace(len([]rune(token))); err != nil {
		return err
	}
	if err := e.lw.raw(token); err != nil {
		return err
	}
	e.queue.EndRun()
	return nil
}

// consumeAllWhitespace implements the "certain value positions" variant of
// writing a token with cached whitespace: every run currently queued is
// printed in order, or a single synthesized separator if none is cached.
func (e *Emitter) consumeAllWhitespace() error {
	runs := e.queue.ConsumeAll()
	if len(runs) == 0 {
		return e.lw.ensureSpace(1)
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text())
	}
	return e.lw.raw(b.String())
}

// consumeVersionComment discards a leading CIF version comment
// (`#\#CIF_...` up to end of line) from the first queued run, the way
// spec.md §4.5 requires so the dialect header this Emitter already wrote
// at cif-start is not duplicated by a version comment captured from the
// original input.
func (e *Emitter) consumeVersionComment() {
	run := e.queue.Peek()
	if run == nil {
		return
	}
	text := run.Text()
	if !strings.HasPrefix(text, "#\\#CIF_") {
		return
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		remainder := text[idx+1:]
		e.queue.Consume()
		if remainder != "" {
			e.queue.Push(remainder)
			e.queue.EndRun()
		}
		return
	}
	e.queue.Consume()
}

func (e *Emitter) CifStart() walker.Directive {
	if err := e.lw.raw(e.dialect.Header); err != nil {
		return e.fail(err)
	}
	e.atStart = true
	return walker.Continue()
}

func (e *Emitter) CifEnd() walker.Directive {
	runs := e.queue.ConsumeAll()
	for _, r := range runs {
		if err := e.lw.raw(r.Text()); err != nil {
			return e.fail(err)
		}
	}
	if len(runs) == 0 || e.lw.column != 0 {
		if err := e.lw.newline(); err != nil {
			return e.fail(err)
		}
	}
	return walker.Continue()
}

func (e *Emitter) BlockStart(code string) walker.Directive {
	if e.atStart {
		e.consumeVersionComment()
		e.atStart = false
	}
	if err := e.writeToken("data_" + code); err != nil {
		return e.fail(err)
	}
	e.depth = depthBlock
	return walker.Continue()
}

func (e *Emitter) BlockEnd() walker.Directive {
	e.depth = depthTop
	return walker.Continue()
}

func (e *Emitter) FrameStart(code string) walker.Directive {
	if err := e.writeToken("save_" + code); err != nil {
		return e.fail(err)
	}
	e.depth = depthFrame
	return walker.Continue()
}

func (e *Emitter) FrameEnd() walker.Directive {
	if err := e.writeToken("save_"); err != nil {
		return e.fail(err)
	}
	e.depth = depthBlock
	return walker.Continue()
}

func (e *Emitter) LoopStart(info cifevents.LoopStartInfo) walker.Directive {
	if err := e.writeToken("loop_"); err != nil {
		return e.fail(err)
	}
	for _, name := range info.Names {
		if err := e.writeToken(name); err != nil {
			return e.fail(err)
		}
	}
	e.inLoop = true

	if e.synthesizePacket {
		e.synthesizePacket = false
		if err := e.lw.newline(); err != nil {
			return e.fail(err)
		}
		for range info.Names {
			if err := e.lw.raw(" ?"); err != nil {
				return e.fail(err)
			}
		}
		if err := e.lw.newline(); err != nil {
			return e.fail(err)
		}
	}
	return walker.Continue()
}

func (e *Emitter) LoopEnd() walker.Directive {
	e.inLoop = false
	return walker.Continue()
}

func (e *Emitter) Item(info cifevents.ItemInfo) walker.Directive {
	v, ok := info.Value.(value.Value)
	if !ok {
		return e.fail(cerrors.New(cerrors.InternalError, "item %q carries a non-value.Value payload", info.Name))
	}

	if !e.inLoop {
		if err := e.writeToken(info.Name); err != nil {
			return e.fail(err)
		}
	}
	if err := e.writeValue(v); err != nil {
		return e.itemFail(err)
	}
	return walker.Continue()
}

func (e *Emitter) Whitespace(text string) {
	e.queue.Push(text)
}

func (e *Emitter) ParseError(cifevents.ParseErrorInfo) walker.Directive {
	return walker.Continue()
}
