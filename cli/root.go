// Package cli implements the linguist command-line surface of spec.md §6:
// a single cobra command (unlike the teacher project's subcommand tree in
// cli/cmd, this tool has exactly one mode of operation: read a CIF
// document, write it back out, possibly in a different dialect/encoding),
// the full `-f/-e/-l/-p/-F/-E/-L/-P/-q/-s` flag surface, and the exit-code
// policy of spec.md §6.
package cli

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ciftools/linguist/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "linguist [input-file [output-file]]",
	Short:        "linguist",
	SilenceUsage: true,
	Long:         `Reads a CIF document and rewrites it, normalizing or changing its dialect, character encoding, or text-field protocols as requested.`,
	Args:         cobra.MaximumNArgs(2),
	RunE:         runE,
}

var (
	rawInputFormat        string
	rawInputEncoding      string
	rawInputLineFolding   string
	rawInputTextPrefixing string

	rawOutputFormat        string
	rawOutputEncoding      string
	rawOutputLineFolding   string
	rawOutputTextPrefixing string

	flagQuiet  bool
	flagStrict bool
)

func boolArgDefault(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

var registerFlagsOnce sync.Once

// Execute runs the root command against os.Args, registering flags with
// defaults from linguist.yaml (config.Load), and returns the process exit
// code spec.md §6 specifies. It does not call os.Exit itself so
// cmd/linguist/main.go stays a thin wrapper.
func Execute() int {
	cfg, err := config.Load()
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("failed to load linguist.yaml")
		return 2
	}

	registerFlagsOnce.Do(func() { registerFlags(cfg) })

	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error (SilenceUsage leaves error
		// printing on); a malformed invocation never reaches Run.
		return 2
	}
	return exitCodeResult
}

func registerFlags(cfg config.Config) {
	flags := rootCmd.Flags()
	flags.StringVarP(&rawInputFormat, "input-format", "f", cfg.InputFormat, "input dialect: auto|cif10|cif11|cif20")
	flags.StringVarP(&rawInputEncoding, "input-encoding", "e", cfg.InputEncoding, "input character encoding, or auto")
	flags.StringVarP(&rawInputLineFolding, "input-line-folding", "l", boolArgDefault(cfg.InputLineFolding), "decode fold protocol: 1|0")
	flags.StringVarP(&rawInputTextPrefixing, "input-text-prefixing", "p", boolArgDefault(cfg.InputTextPrefixing), "decode prefix protocol: 1|0")

	flags.StringVarP(&rawOutputFormat, "output-format", "F", cfg.OutputFormat, "output dialect: cif11|cif20")
	flags.StringVarP(&rawOutputEncoding, "output-encoding", "E", cfg.OutputEncoding, "output character encoding, or auto")
	flags.StringVarP(&rawOutputLineFolding, "output-line-folding", "L", boolArgDefault(cfg.OutputLineFolding), "allow fold on output: 1|0")
	flags.StringVarP(&rawOutputTextPrefixing, "output-text-prefixing", "P", boolArgDefault(cfg.OutputTextPrefixing), "allow prefix on output: 1|0")

	flags.BoolVarP(&flagQuiet, "quiet", "q", cfg.Quiet, "suppress diagnostic messages")
	flags.BoolVarP(&flagStrict, "strict", "s", cfg.Strict, "halt on first parse error")
}

// exitCodeResult carries RunE's result out to Execute, since cobra's RunE
// signature only lets a command report failure as an error, not as one of
// spec.md §6's four distinct exit codes.
var exitCodeResult int

func runE(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(args)
	if err != nil {
		exitCodeResult = 2
		return err
	}

	exitCodeResult = Run(opts, os.Stdin, os.Stdout, os.Stderr, logrus.StandardLogger())
	return nil
}

func resolveOptions(args []string) (Options, error) {
	inputLineFolding, err := parseBoolArg(rawInputLineFolding)
	if err != nil {
		return Options{}, err
	}
	inputTextPrefixing, err := parseBoolArg(rawInputTextPrefixing)
	if err != nil {
		return Options{}, err
	}
	outputLineFolding, err := parseBoolArg(rawOutputLineFolding)
	if err != nil {
		return Options{}, err
	}
	outputTextPrefixing, err := parseBoolArg(rawOutputTextPrefixing)
	if err != nil {
		return Options{}, err
	}

	if err := validateInputFormat(rawInputFormat); err != nil {
		return Options{}, err
	}
	if err := validateOutputFormat(rawOutputFormat); err != nil {
		return Options{}, err
	}

	opts := Options{
		InputFormat:         rawInputFormat,
		InputEncoding:       rawInputEncoding,
		InputLineFolding:    inputLineFolding,
		InputTextPrefixing:  inputTextPrefixing,
		OutputFormat:        rawOutputFormat,
		OutputEncoding:      rawOutputEncoding,
		OutputLineFolding:   outputLineFolding,
		OutputTextPrefixing: outputTextPrefixing,
		Quiet:               flagQuiet,
		Strict:              flagStrict,
	}
	if len(args) > 0 {
		opts.InputPath = args[0]
	}
	if len(args) > 1 {
		opts.OutputPath = args[1]
	}
	return opts, nil
}
