package store

import (
	"github.com/shopspring/decimal"

	"github.com/ciftools/linguist/value"
)

// decimalMetadata parses text as a decimal literal for NumericMetadata.
// A text that does not parse (e.g. a CIF exponent form decimal.Decimal
// does not accept) is not an error: it simply yields Valid == false, the
// same "best-effort, never blocking" stance value.NumericMetadata
// documents.
func decimalMetadata(text string) (value.NumericMetadata, error) {
	parsed, err := decimal.NewFromString(text)
	if err != nil {
		return value.NumericMetadata{Valid: false}, nil
	}
	return value.NumericMetadata{Parsed: parsed, Valid: true}, nil
}
