// Package walker implements the depth-first traversal driver of
// spec.md §4.2: it consumes events from a cifevents.Source and invokes a
// user-supplied Handler at each structural boundary, honoring the
// traversal Directive the handler returns.
//
// The design mirrors the teacher project's use of go/ast.Visitor
// (goparser/walk.go's CallVisitor) to drive a single user object through
// nested structure, generalized to a tagged Directive{Continue,
// SkipCurrent, SkipSiblings, End}|Error(kind) return value (spec.md §9
// design note) since CIF boundaries are paired start/end callbacks rather
// than ast.Visitor's single dispatch-and-recurse method.
package walker

// code is the traversal directive a Handler callback returns.
type code int

const (
	continueCode code = iota
	skipCurrentCode
	skipSiblingsCode
	endCode
	errorCode
)

// Directive is the tagged return value of every Handler callback
// (spec.md §4.2).
type Directive struct {
	code code
	err  error
}

// Continue descends into the current element's children.
func Continue() Directive { return Directive{code: continueCode} }

// SkipCurrent does not descend into the current element's children and
// continues with the next sibling; the matching end callback for this
// element is not invoked.
func SkipCurrent() Directive { return Directive{code: skipCurrentCode} }

// SkipSiblings finishes the current element normally (including its end
// callback) but skips the remaining siblings at this level.
func SkipSiblings() Directive { return Directive{code: skipSiblingsCode} }

// End terminates the entire walk successfully; no further callbacks fire.
func End() Directive { return Directive{code: endCode} }

// Error terminates the walk and propagates err from Walk.
func Error(err error) Directive { return Directive{code: errorCode, err: err} }

// valid reports whether d is one of the four known directive values or an
// Error; any other value (achievable only by constructing code directly,
// which is unexported) is itself an error per spec.md §4.2 ("Unknown
// directive values are treated as errors").
func (d Directive) valid() bool {
	return d.code >= continueCode && d.code <= errorCode
}

func (d Directive) asError() error {
	if d.code == errorCode {
		return d.err
	}
	return nil
}

// Err returns the error carried by an Error directive, or nil for any
// other directive. A decorator Handler (e.g. interceptor.Interceptor)
// calls this to inspect the directive an inner Handler returned before
// deciding whether to propagate it as-is or translate it into its own
// policy.
func (d Directive) Err() error {
	return d.asError()
}
