package emit

import (
	"github.com/ciftools/linguist/analyzer"
	"github.com/ciftools/linguist/dialect"
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
)

// writeValue renders one Value at the current, top-level value position:
// it consumes the cached whitespace that precedes it (spec.md §4.5
// "certain value positions" consume all cached runs at once) and then
// writes the value's content.
func (e *Emitter) writeValue(v value.Value) error {
	if err := e.consumeAllWhitespace(); err != nil {
		return err
	}
	return e.writeValueContent(v)
}

// writeValueContent renders v with no whitespace-queue consumption of its
// own; used both for the top-level call (after writeValue has already
// consumed the queue) and recursively for List/Table elements, which are
// separated purely by synthesized spacing rather than queued whitespace.
func (e *Emitter) writeValueContent(v value.Value) error {
	switch v.Kind() {
	case value.Unknown:
		return e.lw.raw("?")
	case value.NotApplicable:
		return e.lw.raw(".")
	case value.Character:
		return e.writeCharacterOrNumber(v)
	case value.Number:
		return e.writeCharacterOrNumber(v)
	case value.List:
		return e.writeList(v)
	case value.Table:
		return e.writeTable(v)
	default:
		return cerrors.New(cerrors.InternalError, "unhandled value kind %v", v.Kind())
	}
}

func (e *Emitter) writeCharacterOrNumber(v value.Value) error {
	text, _ := v.Text()

	a := analyzer.Analyze(text, !v.Quoted(), e.dialect.AllowTripleQuote, dialect.MaxLineLength)

	switch a.DelimLength {
	case analyzer.DelimNone:
		return e.lw.raw(text)
	case analyzer.DelimQuote:
		return e.lw.raw(string(a.Delim) + text + string(a.Delim))
	case analyzer.DelimTripleQuote:
		return e.lw.raw(`"""` + text + `"""`)
	case analyzer.DelimTextField:
		return e.writeTextFieldValue(text, a)
	default:
		return cerrors.New(cerrors.InternalError, "unhandled delimiter kind %v", a.DelimLength)
	}
}

func (e *Emitter) writeTextFieldValue(text string, a analyzer.Analysis) error {
	wantFold := a.LengthMax > dialect.MaxLineLength ||
		a.LengthFirst >= dialect.MaxLineLength ||
		a.HasReservedStart ||
		a.HasTrailingWS ||
		a.MaxSemiRun >= dialect.MaxFoldLength-1

	wantPrefix := a.ContainsTextDelim || a.MaxSemiRun >= dialect.MaxFoldLength-dialect.FoldWindow-1

	doFold := wantFold && e.allowOutputFolding
	doPrefix := wantPrefix && e.allowOutputPrefixing

	if !doFold && !doPrefix && a.LengthMax > dialect.MaxLineLength-1 {
		return cerrors.New(cerrors.OverlengthLine, "value cannot be emitted within the line length limit without folding")
	}

	field := buildTextField(text, doFold, doPrefix, dialect.MaxFoldLength, dialect.FoldWindow)
	return e.lw.raw(field)
}

func (e *Emitter) writeList(v value.Value) error {
	if !e.dialect.AllowLists {
		e.queue.Drain()
		return cerrors.New(cerrors.DisallowedValue, "list values are not permitted in dialect %q", e.dialect.Name)
	}
	if err := e.lw.raw("["); err != nil {
		return err
	}
	elements, _ := v.Elements()
	for i, el := range elements {
		if i > 0 {
			if err := e.lw.ensureSpace(1); err != nil {
				return err
			}
		}
		if err := e.writeValueContent(el); err != nil {
			return err
		}
	}
	return e.lw.raw("]")
}

func (e *Emitter) writeTable(v value.Value) error {
	if !e.dialect.AllowTables {
		e.queue.Drain()
		return cerrors.New(cerrors.DisallowedValue, "table values are not permitted in dialect %q", e.dialect.Name)
	}
	if err := e.lw.raw("{"); err != nil {
		return err
	}
	entries, _ := v.Entries()
	for i, entry := range entries {
		if i > 0 {
			if err := e.lw.ensureSpace(1); err != nil {
				return err
			}
		}
		if err := e.lw.raw("'" + entry.KeyOriginal + "':"); err != nil {
			return err
		}
		if err := e.writeValueContent(entry.Value); err != nil {
			return err
		}
	}
	return e.lw.raw("}")
}
