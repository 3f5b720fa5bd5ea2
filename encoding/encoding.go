// Package encoding is the external-interface seam of spec.md §1's "Unicode
// character classification and encoding conversion (assumed available)"
// collaborator: a Converter abstraction the CLI resolves input/output
// encodings through (`-e`/`-E`, spec.md §6), without this repository
// depending on a specific ICU-equivalent binding for every named encoding
// a CIF file might declare.
//
// UTF-8 — the always-available case, and the only one the CIF 2.0 wire
// format itself requires — is implemented directly against the standard
// library. Every other named encoding resolves through
// golang.org/x/text/encoding via the IANA name registry, the same module
// the teacher project already pulls in (golang.org/x/text, indirectly
// through its SQL driver stack) promoted here to a direct, exercised
// dependency.
package encoding

import (
	"fmt"
	"unicode/utf8"

	xtext "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Converter decodes a byte stream in some character encoding to a Go string
// (always UTF-8 internally) and encodes back.
type Converter interface {
	Decode(b []byte) (string, error)
	Encode(s string) ([]byte, error)
}

// UTF8 is the always-available Converter: CIF 2.0 text is UTF-8 already, so
// decoding is validation and encoding is a no-op copy.
var UTF8 Converter = utf8Converter{}

type utf8Converter struct{}

func (utf8Converter) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("encoding: input is not valid UTF-8")
	}
	return string(b), nil
}

func (utf8Converter) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("encoding: output is not valid UTF-8")
	}
	return []byte(s), nil
}

// Lookup resolves name (an IANA character-set name, e.g. "ISO-8859-1",
// "UTF-16", "US-ASCII") to a Converter. "" and the spellings "utf-8",
// "UTF-8", "utf8" and "UTF8" return UTF8 directly rather than
// round-tripping through x/text's UTF-8 encoding, which is an identity
// transform anyway; other spellings of UTF-8 resolve through the IANA index.
//
// "auto" is not resolved here: detecting an unlabeled encoding is the
// parser's job (spec.md §1 lists it as part of the same out-of-scope
// collaborator), not this package's — callers that see "auto" should probe
// the input themselves (e.g. a BOM check) and call Lookup with the result.
func Lookup(name string) (Converter, error) {
	if name == "" || isUTF8Name(name) {
		return UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("encoding: unknown character encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding: unsupported character encoding %q", name)
	}
	return xtextConverter{enc: enc}, nil
}

func isUTF8Name(name string) bool {
	switch name {
	case "utf-8", "UTF-8", "utf8", "UTF8":
		return true
	default:
		return false
	}
}

// xtextConverter adapts a golang.org/x/text/encoding.Encoding to Converter.
type xtextConverter struct {
	enc xtext.Encoding
}

func (c xtextConverter) Decode(b []byte) (string, error) {
	out, _, err := transform.Bytes(c.enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("encoding: decode failed: %w", err)
	}
	return string(out), nil
}

func (c xtextConverter) Encode(s string) ([]byte, error) {
	out, _, err := transform.Bytes(c.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding: encode failed: %w", err)
	}
	return out, nil
}
