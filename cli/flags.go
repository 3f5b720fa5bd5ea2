package cli

import (
	"fmt"
	"strings"
)

// parseBoolArg implements spec.md §6's boolean argument synonyms: 1/yes/true
// vs 0/no/false, case-insensitively. It backs every `1|0` flag in the CLI
// table (-l/-p/-L/-P) since cobra's native BoolVarP only accepts the Go
// spelling of true/false.
func parseBoolArg(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true":
		return true, nil
	case "0", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean argument %q: want one of 1/yes/true or 0/no/false", s)
	}
}

var validInputFormats = map[string]bool{"auto": true, "cif10": true, "cif11": true, "cif20": true}
var validOutputFormats = map[string]bool{"cif11": true, "cif20": true}

func validateInputFormat(s string) error {
	if !validInputFormats[s] {
		return fmt.Errorf("invalid --input-format %q: want one of auto, cif10, cif11, cif20", s)
	}
	return nil
}

func validateOutputFormat(s string) error {
	if !validOutputFormats[s] {
		return fmt.Errorf("invalid --output-format %q: want one of cif11, cif20", s)
	}
	return nil
}
