// Package errors defines the tagged error kinds shared by every component of
// the CIF library: the container store, the walker, the emitter, and the
// error interceptor all surface one of these kinds rather than an opaque
// error, so callers can branch on failure the way the rest of the system
// expects (spec.md §7).
package errors

import "fmt"

// Kind identifies the category of a CIFError. Kinds are never wrapped or
// combined; a single failure has exactly one Kind.
type Kind int

const (
	// ArgumentError indicates a null or invalid input to an API operation.
	ArgumentError Kind = iota + 1
	// InvalidHandle indicates an operation on a handle from a different
	// store generation, or on a handle whose container was destroyed.
	InvalidHandle
	// EnvironmentError indicates the backing store failed to initialize or
	// enforce one of its constraints (e.g. the engine rejected a pragma).
	EnvironmentError
	// DuplicateCode indicates a block or frame code collides, under
	// normalization, with one already present in its scope.
	DuplicateCode
	// NoSuchBlock indicates a lookup for a block code that does not exist.
	NoSuchBlock
	// NoSuchFrame indicates a lookup for a frame code that does not exist
	// within its parent block.
	NoSuchFrame
	// NoSuchItem indicates a lookup for a data name absent from the
	// container.
	NoSuchItem
	// NoSuchLoop indicates a lookup for a loop that does not exist (by
	// category or by member name).
	NoSuchLoop
	// InvalidBlockcode indicates name normalization rejected a proposed
	// block code.
	InvalidBlockcode
	// InvalidFramecode indicates name normalization rejected a proposed
	// frame code.
	InvalidFramecode
	// InvalidItemname indicates name normalization rejected a proposed
	// data name.
	InvalidItemname
	// DisallowedValue indicates a value's kind cannot be expressed in the
	// dialect selected for emission (List/Table under CIF 1.1).
	DisallowedValue
	// OverlengthLine indicates an emission would exceed MAX_LINE_LENGTH
	// and the caller has disabled the folding that would fix it.
	OverlengthLine
	// InternalError indicates an invariant of this package was violated;
	// it should never surface to a well-behaved caller.
	InternalError
	// IOError indicates the output sink failed.
	IOError
	// Finished is a non-error sentinel reported by iterators once
	// exhausted.
	Finished
)

func (k Kind) String() string {
	switch k {
	case ArgumentError:
		return "ArgumentError"
	case InvalidHandle:
		return "InvalidHandle"
	case EnvironmentError:
		return "EnvironmentError"
	case DuplicateCode:
		return "DuplicateCode"
	case NoSuchBlock:
		return "NoSuchBlock"
	case NoSuchFrame:
		return "NoSuchFrame"
	case NoSuchItem:
		return "NoSuchItem"
	case NoSuchLoop:
		return "NoSuchLoop"
	case InvalidBlockcode:
		return "InvalidBlockcode"
	case InvalidFramecode:
		return "InvalidFramecode"
	case InvalidItemname:
		return "InvalidItemname"
	case DisallowedValue:
		return "DisallowedValue"
	case OverlengthLine:
		return "OverlengthLine"
	case InternalError:
		return "InternalError"
	case IOError:
		return "IOError"
	case Finished:
		return "Finished"
	default:
		return "UnknownKind"
	}
}

// CIFError is the concrete error type returned by every operation in this
// module. It carries a Kind for programmatic dispatch and a human-readable
// Message.
type CIFError struct {
	Kind    Kind
	Message string
}

func (e CIFError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs a CIFError of the given Kind with a formatted message.
func New(kind Kind, format string, args ...any) CIFError {
	return CIFError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a CIFError of the given Kind. It follows the
// standard library's errors.As unwrapping protocol so it composes with
// fmt.Errorf("...: %w", err)-wrapped errors.
func Is(err error, kind Kind) bool {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if ce, ok := err.(CIFError); ok {
			return ce.Kind == kind
		}
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
