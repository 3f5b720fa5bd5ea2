// Package name implements CIF name normalization: the case-folded,
// Unicode-normalized form used to compare block codes, frame codes, and
// data names for equality (spec.md §3 "Normalized name").
package name

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	cerrors "github.com/ciftools/linguist/errors"
)

// Normalized is the case-folded, NFC-normalized form of a block code, frame
// code, or data name. Two Normalized values are equal (by ==) iff the
// originals name the same container or item per spec.md §3.
type Normalized string

var foldCaser = cases.Fold()

// Normalize produces the Normalized form of original, and fails with kind
// if original is empty, contains a control character below U+0020 other
// than tab, or begins
// with the CIF 2.0 version-comment introducer "#\#" at column one (which
// would be indistinguishable from the dialect header if ever echoed back
// unquoted).
//
// kind is the specific InvalidBlockcode/InvalidFramecode/InvalidItemname
// error the caller should see on rejection, since the three callers of
// Normalize (blocks, frames, items) want distinct error kinds for the same
// validation.
func Normalize(original string, kind cerrors.Kind) (Normalized, error) {
	if original == "" {
		return "", cerrors.New(kind, "name must not be empty")
	}
	for _, r := range original {
		if r < 0x20 && r != '\t' {
			return "", cerrors.New(kind, "name %q contains a control character", original)
		}
	}
	if strings.HasPrefix(original, "#\\#") {
		return "", cerrors.New(kind, "name %q collides with the CIF dialect header introducer", original)
	}

	folded := foldCaser.String(norm.NFC.String(original))
	return Normalized(folded), nil
}

// MustNormalize is like Normalize but panics on error; intended for tests
// and for constants known to be valid at compile time.
func MustNormalize(original string) Normalized {
	n, err := Normalize(original, cerrors.InternalError)
	if err != nil {
		panic(err)
	}
	return n
}
