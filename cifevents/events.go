// Package cifevents specifies the contract between the CIF lexer/parser
// (an external collaborator, out of scope per spec.md §1) and the walker
// (walker.Walk): the set of structural events the parser is assumed to
// emit, and the Source it emits them through.
//
// Nothing in this repository implements Source against real CIF text;
// that is the job of the parser this package's contract describes. Tests
// in this repository drive the walker and emitter against a small
// scripted Source that replays literal event sequences, standing in for
// the parser for the purposes of spec.md §8's end-to-end scenarios.
package cifevents

import "github.com/ciftools/linguist/errors"

// EventKind names one of the structural boundaries the parser is assumed
// to report (spec.md §1, §2 component 3 "Walker"): cif-start, cif-end,
// block-start/end, frame-start/end, loop-start/end, packet-start/end,
// item, whitespace, error.
type EventKind int

const (
	CifStart EventKind = iota + 1
	CifEnd
	BlockStart
	BlockEnd
	FrameStart
	FrameEnd
	LoopStart
	LoopEnd
	PacketStart
	PacketEnd
	Item
	Whitespace
	ParseError
)

func (k EventKind) String() string {
	switch k {
	case CifStart:
		return "cif-start"
	case CifEnd:
		return "cif-end"
	case BlockStart:
		return "block-start"
	case BlockEnd:
		return "block-end"
	case FrameStart:
		return "frame-start"
	case FrameEnd:
		return "frame-end"
	case LoopStart:
		return "loop-start"
	case LoopEnd:
		return "loop-end"
	case PacketStart:
		return "packet-start"
	case PacketEnd:
		return "packet-end"
	case Item:
		return "item"
	case Whitespace:
		return "whitespace"
	case ParseError:
		return "error"
	default:
		return "unknown-event"
	}
}

// LoopStartInfo carries the data names of a loop as the parser discovered
// them, in declared order, and the loop's category tag (empty for the
// distinguished scalar loop, spec.md §3).
type LoopStartInfo struct {
	Names    []string
	Category string
}

// ItemInfo carries one data-name/value pair as read by the parser. Value is
// left as an opaque payload (interface{}) here: converting parser-level
// value syntax into value.Value is the parser's job, not this contract's.
// Real Source implementations are expected to hand the walker an
// already-built value.Value through this field.
type ItemInfo struct {
	Name  string
	Value interface{}
}

// ParseErrorInfo carries a recoverable or fatal parse error as reported by
// the parser (spec.md §4.6).
type ParseErrorInfo struct {
	Code       string
	Line, Col  int
	SampleText string
	Length     int
}

// Event is one structural occurrence reported by the parser. Only the
// field(s) relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Code           string // BlockStart/FrameStart: original, unnormalized code
	LoopStartInfo  LoopStartInfo
	Item           ItemInfo
	ParseErrorInfo ParseErrorInfo
	WhitespaceText string // Whitespace: segment text; empty is the explicit zero-length boundary
}

// Source is the parser-side contract the walker drives. Next returns the
// next event; it returns a CIFError of kind errors.Finished once input is
// exhausted, matching the iterator-exhaustion sentinel used throughout
// this module (spec.md §7).
type Source interface {
	Next() (Event, error)
}

// IsFinished reports whether err is the Source-exhaustion sentinel.
func IsFinished(err error) bool {
	return errors.Is(err, errors.Finished)
}
