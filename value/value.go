// Package value implements the CIF value model: the tagged Value variants
// of spec.md §3 (Unknown, NotApplicable, Character, Number, List, Table)
// along with kind-preserving operations over them.
package value

import (
	"github.com/shopspring/decimal"

	"github.com/ciftools/linguist/name"
)

// Kind discriminates the variant a Value holds.
type Kind int

const (
	Unknown Kind = iota + 1
	NotApplicable
	Character
	Number
	List
	Table
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case NotApplicable:
		return "NotApplicable"
	case Character:
		return "Character"
	case Number:
		return "Number"
	case List:
		return "List"
	case Table:
		return "Table"
	default:
		return "InvalidKind"
	}
}

// NumericMetadata captures the parsed view of a Number's text, kept purely
// for callers that want numeric comparison; it is never consulted by the
// emitter, which always re-emits the preserved text verbatim (spec.md §3:
// "precision-preserving").
type NumericMetadata struct {
	// Parsed is the decimal value of the literal, excluding any trailing
	// standard-uncertainty suffix. Valid is false if the text could not be
	// parsed as a decimal (e.g. it uses CIF-specific exponent forms this
	// package chooses not to special-case).
	Parsed decimal.Decimal
	Valid  bool
	// SU is the text of a trailing standard-uncertainty suffix such as
	// the "(4)" in "12.3(4)", without parentheses; empty if absent.
	SU string
}

// TableEntry is one key/value pair of a Table value. Keys are compared by
// Normalized form but the original spelling is retained for re-emission.
type TableEntry struct {
	KeyNormalized name.Normalized
	KeyOriginal   string
	Value         Value
}

// Value is a CIF value. Exactly one of the fields relevant to its Kind is
// populated; constructors below are the supported way to build one.
type Value struct {
	kind Kind

	// Character / Number
	text    string
	quoted  bool
	numeric NumericMetadata

	// List
	list []Value

	// Table
	table []TableEntry
}

func (v Value) Kind() Kind { return v.kind }

// NewUnknown returns the CIF `?` absence token.
func NewUnknown() Value { return Value{kind: Unknown} }

// NewNotApplicable returns the CIF `.` absence token.
func NewNotApplicable() Value { return Value{kind: NotApplicable} }

// NewCharacter returns an opaque text value. quoted records whether the
// original was delimited (by quote or text field) rather than a bare word;
// it governs whether the emitter may re-emit the value unquoted.
func NewCharacter(text string, quoted bool) Value {
	return Value{kind: Character, text: text, quoted: quoted}
}

// NewNumber returns a CIF numeric literal, preserved verbatim as text.
func NewNumber(text string, metadata NumericMetadata) Value {
	return Value{kind: Number, text: text, numeric: metadata, quoted: false}
}

// NewList returns an ordered sequence value, legal only in CIF 2.0 output.
func NewList(elements []Value) Value {
	return Value{kind: List, list: append([]Value(nil), elements...)}
}

// NewTable returns an insertion-ordered mapping value, legal only in CIF
// 2.0 output. entries must already carry deduplicated-by-normalized-key
// data; NewTable does not itself enforce uniqueness so that callers
// replaying a parser's (possibly erroneous) input can still build one.
func NewTable(entries []TableEntry) Value {
	return Value{kind: Table, table: append([]TableEntry(nil), entries...)}
}

// Text returns the preserved text of a Character or Number value, and
// false for any other Kind.
func (v Value) Text() (string, bool) {
	if v.kind == Character || v.kind == Number {
		return v.text, true
	}
	return "", false
}

// Quoted reports whether a Character value's original was delimited. It is
// always false for Kinds other than Character.
func (v Value) Quoted() bool {
	return v.kind == Character && v.quoted
}

// Numeric returns the NumericMetadata of a Number value, and false for any
// other Kind.
func (v Value) Numeric() (NumericMetadata, bool) {
	if v.kind == Number {
		return v.numeric, true
	}
	return NumericMetadata{}, false
}

// Elements returns the ordered elements of a List value, and false for any
// other Kind. The returned slice is a borrowed view; callers must not
// mutate it.
func (v Value) Elements() ([]Value, bool) {
	if v.kind == List {
		return v.list, true
	}
	return nil, false
}

// Entries returns the ordered entries of a Table value, and false for any
// other Kind. The returned slice is a borrowed view; callers must not
// mutate it.
func (v Value) Entries() ([]TableEntry, bool) {
	if v.kind == Table {
		return v.table, true
	}
	return nil, false
}

// Equal reports structural equality: character-for-character for Character
// and Number (ignoring the quoted flag and numeric metadata, which are not
// part of a value's logical identity), and recursively for List/Table
// (spec.md §8 invariant 4 — round-trip of values).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Unknown, NotApplicable:
		return true
	case Character, Number:
		return a.text == b.text
	case List:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case Table:
		if len(a.table) != len(b.table) {
			return false
		}
		for i := range a.table {
			if a.table[i].KeyNormalized != b.table[i].KeyNormalized {
				return false
			}
			if !Equal(a.table[i].Value, b.table[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
