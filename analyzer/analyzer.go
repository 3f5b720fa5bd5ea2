// Package analyzer implements the pure string-analysis function of
// spec.md §4.4: given a text value and the emission constraints in force,
// it reports which delimiter kinds are legal and the structural facts the
// emitter needs to fold or prefix a text field.
//
// The reserved-start detection is table-driven the
// way the teacher project's sqlparser/pgsql/reserved.go drives keyword
// classification from a fixed table, scaled down here to the five
// reserved CIF keywords named in spec.md §4.4 plus the leading-semicolon
// rule resolved by Open Question (b) (spec.md §9): a reserved start is
// text beginning with one of the five keywords, or whose first logical
// line begins with ';'.
package analyzer

import "strings"

// DelimKind is the smallest viable delimiter kind for a value's text,
// spec.md §4.4.
type DelimKind int

const (
	// DelimNone means the value may be emitted with no delimiter at all
	// (a bare word).
	DelimNone DelimKind = 0
	// DelimQuote means a single apostrophe or double quote suffices.
	DelimQuote DelimKind = 1
	// DelimTextField means a semicolon-bounded text field is required.
	DelimTextField DelimKind = 2
	// DelimTripleQuote means CIF 2.0 triple-quoting is required (only
	// ever selected when triple-quoting is permitted).
	DelimTripleQuote DelimKind = 3
)

var reservedStarts = []string{"data_", "save_", "loop_", "global_", "stop_"}

// Analysis is the pure report spec.md §4.4 requires the emitter to base
// every delimiter and folding decision on.
type Analysis struct {
	DelimLength DelimKind
	Delim       byte // '\'' or '"' when DelimLength == DelimQuote; 0 otherwise

	NumLines    int
	LengthFirst int
	LengthLast  int
	LengthMax   int

	HasReservedStart  bool
	HasTrailingWS     bool
	ContainsTextDelim bool
	MaxSemiRun        int
}

// Analyze classifies text for emission. allowUnquoted permits DelimNone;
// allowTripleQuote permits DelimTripleQuote (CIF 2.0 only); maxLineLength
// is the dialect's physical line limit, used only to decide whether
// DelimTextField must be forced by an overlong first line (folding itself
// is the emitter's job, driven by the Analysis this function returns).
func Analyze(text string, allowUnquoted, allowTripleQuote bool, maxLineLength int) Analysis {
	lines := splitLogicalLines(text)

	a := Analysis{
		NumLines:          len(lines),
		HasReservedStart:  hasReservedStart(text),
		HasTrailingWS:     hasTrailingWhitespace(lines),
		ContainsTextDelim: strings.Contains(text, "\n;"),
		MaxSemiRun:        maxSemicolonRun(lines),
	}
	if len(lines) > 0 {
		a.LengthFirst = len([]rune(lines[0]))
		a.LengthLast = len([]rune(lines[len(lines)-1]))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n > a.LengthMax {
			a.LengthMax = n
		}
	}

	a.DelimLength, a.Delim = selectDelim(text, a, allowUnquoted, allowTripleQuote, maxLineLength)
	return a
}

func selectDelim(text string, a Analysis, allowUnquoted, allowTripleQuote bool, maxLineLength int) (DelimKind, byte) {
	// A text field is unavoidable once the content cannot fit a single
	// logical line inside a quote delimiter at all: multi-line content
	// always requires either a text field or (CIF 2.0) triple quoting, and
	// so does a single logical line too long to fit a quote delimiter on
	// one physical line.
	multiline := a.NumLines > 1
	tooLongForQuote := a.LengthMax+2 > maxLineLength

	if !multiline && !tooLongForQuote {
		if allowUnquoted && canBeUnquoted(text, a) {
			return DelimNone, 0
		}
		if !strings.ContainsRune(text, '\'') {
			return DelimQuote, '\''
		}
		if !strings.ContainsRune(text, '"') {
			return DelimQuote, '"'
		}
		// Both quote characters occur in this single logical line; a
		// triple-quote is the lighter-weight alternative to a full text
		// field for exactly this case.
		if allowTripleQuote && !strings.Contains(text, `"""`) && !strings.Contains(text, "'''") {
			return DelimTripleQuote, 0
		}
	}

	return DelimTextField, 0
}

func canBeUnquoted(text string, a Analysis) bool {
	if text == "" {
		return false
	}
	if a.HasReservedStart {
		return false
	}
	if a.HasTrailingWS {
		return false
	}
	r := []rune(text)
	switch r[0] {
	case '\'', '"', '_', '#', '$', '[', ']', ';':
		return false
	}
	for _, c := range text {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return false
		}
	}
	return true
}

func splitLogicalLines(text string) []string {
	if text == "" {
		return []string{""}
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(normalized, "\n")
}

// hasReservedStart reports whether text begins with one of the reserved
// CIF keywords, case-sensitively: "Loop_x" is not a reserved start, only
// "loop_x" is (design note, spec.md §9 Open Question resolution).
func hasReservedStart(text string) bool {
	if strings.HasPrefix(text, ";") {
		return true
	}
	for _, kw := range reservedStarts {
		if strings.HasPrefix(text, kw) {
			return true
		}
	}
	return false
}

func hasTrailingWhitespace(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	last := lines[len(lines)-1]
	return strings.HasSuffix(last, " ") || strings.HasSuffix(last, "\t")
}

// maxSemicolonRun returns the longest run of leading semicolons found at
// the start of any logical line (spec.md §4.4 "max_semi_run").
func maxSemicolonRun(lines []string) int {
	max := 0
	for _, l := range lines {
		n := 0
		for n < len(l) && l[n] == ';' {
			n++
		}
		if n > max {
			max = n
		}
	}
	return max
}
