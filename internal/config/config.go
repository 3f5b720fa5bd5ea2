// Package config loads linguist.yaml, the optional file of CLI flag
// defaults, the way the teacher project's cli/cmd/config.go loads
// sqlcode.yaml: a small yaml.v3-decoded struct read from the current
// directory.
//
// Unlike sqlcode.yaml, linguist.yaml is optional: every flag in spec.md
// §6's CLI surface already has a documented default, so a missing config
// file is not an error — Load simply returns Default() and lets the
// command line override from there.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const fileName = "linguist.yaml"

// Config holds the default value of every flag in spec.md §6's CLI
// surface, in the same order as that table.
type Config struct {
	InputFormat        string `yaml:"input_format"`
	InputEncoding      string `yaml:"input_encoding"`
	InputLineFolding   bool   `yaml:"input_line_folding"`
	InputTextPrefixing bool   `yaml:"input_text_prefixing"`

	OutputFormat        string `yaml:"output_format"`
	OutputEncoding      string `yaml:"output_encoding"`
	OutputLineFolding   bool   `yaml:"output_line_folding"`
	OutputTextPrefixing bool   `yaml:"output_text_prefixing"`

	Quiet  bool `yaml:"quiet"`
	Strict bool `yaml:"strict"`
}

// Default returns the flag defaults spec.md §6 documents, before any
// linguist.yaml or command-line override is applied.
func Default() Config {
	return Config{
		InputFormat:         "auto",
		InputEncoding:       "auto",
		InputLineFolding:    true,
		InputTextPrefixing:  true,
		OutputFormat:        "cif20",
		OutputEncoding:      "auto",
		OutputLineFolding:   true,
		OutputTextPrefixing: true,
		Quiet:               false,
		Strict:              false,
	}
}

// Load reads linguist.yaml from the current directory over Default(),
// returning Default() unchanged if the file does not exist.
func Load() (Config, error) {
	result := Default()

	b, err := os.ReadFile(fileName)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &result); err != nil {
		return Config{}, err
	}
	return result, nil
}
