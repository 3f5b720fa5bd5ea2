// Package dialect defines the two wire-format dialects the emitter can
// target (spec.md §6): CIF 1.1 and CIF 2.0. It mirrors the split the
// teacher project makes between sqlparser/mssql and sqlparser/pgsql — two
// concrete implementations of a shared behavior surface selected once per
// run — except here the "dialect" is a small struct of capability flags
// rather than a distinct scanner/document pair, since both CIF dialects
// share one emitter and differ only in what they permit.
package dialect

// MaxLineLength is the maximum physical line length in any CIF output,
// spec.md §4.5 invariant 3 and §6.
const MaxLineLength = 2048

// MaxFoldLength is the longest content a single folded physical line may
// carry before its trailing continuation backslash, spec.md §4.5.
const MaxFoldLength = MaxLineLength - 1

// FoldWindow is the radius around the target fold point scanned for a
// better break, spec.md §4.5 "Fold-point selection".
const FoldWindow = 8

// Dialect names a CIF wire-format dialect and the emission capabilities
// that differ between them.
type Dialect struct {
	Name string
	// Header is written verbatim once, immediately after cif-start.
	Header string
	// AllowLists and AllowTables gate List/Table value emission
	// (spec.md §3 invariant, §4.5).
	AllowLists  bool
	AllowTables bool
	// AllowTripleQuote gates the CIF 2.0 """..."""  delimiter.
	AllowTripleQuote bool
}

// CIF11 is the CIF 1.1 dialect: no lists, no tables, no triple-quoting.
var CIF11 = Dialect{
	Name:   "cif11",
	Header: "#\\#CIF_1.1\n",
}

// CIF20 is the CIF 2.0 dialect: lists, tables, and triple-quoting are all
// legal.
var CIF20 = Dialect{
	Name:             "cif20",
	Header:           "#\\#CIF_2.0\n",
	AllowLists:       true,
	AllowTables:      true,
	AllowTripleQuote: true,
}

// ByName resolves a dialect by its CLI flag spelling ("cif11", "cif20"),
// spec.md §6.
func ByName(n string) (Dialect, bool) {
	switch n {
	case "cif11":
		return CIF11, true
	case "cif20":
		return CIF20, true
	default:
		return Dialect{}, false
	}
}
