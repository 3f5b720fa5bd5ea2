package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ciftools/linguist/cifevents"
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
)

func TestParseBoolArg(t *testing.T) {
	for _, s := range []string{"1", "yes", "true", "YES", "True"} {
		b, err := parseBoolArg(s)
		require.NoError(t, err)
		require.True(t, b)
	}
	for _, s := range []string{"0", "no", "false", "NO"} {
		b, err := parseBoolArg(s)
		require.NoError(t, err)
		require.False(t, b)
	}
	_, err := parseBoolArg("maybe")
	require.Error(t, err)
}

func TestValidateFormats(t *testing.T) {
	require.NoError(t, validateInputFormat("auto"))
	require.NoError(t, validateInputFormat("cif10"))
	require.Error(t, validateInputFormat("bogus"))

	require.NoError(t, validateOutputFormat("cif11"))
	require.Error(t, validateOutputFormat("auto"))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 3, exitCode(cerrors.New(cerrors.IOError, "boom"), 0))
	require.Equal(t, 1, exitCode(nil, 2))
	require.Equal(t, 0, exitCode(nil, 0))
}

func TestEncodingWriter_RoundTripsUTF8(t *testing.T) {
	var buf bytes.Buffer
	conv, err := resolveEncoding("auto")
	require.NoError(t, err)
	w := &encodingWriter{w: &buf, conv: conv}
	_, err = io.WriteString(w, "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", buf.String())
}

// scriptedSource replays a fixed slice of events, standing in for the
// external CIF parser this package never ships.
type scriptedSource struct {
	events []cifevents.Event
	pos    int
}

func (s *scriptedSource) Next() (cifevents.Event, error) {
	if s.pos >= len(s.events) {
		return cifevents.Event{}, cerrors.New(cerrors.Finished, "no more events")
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func TestRun_EndToEndWithInjectedSource(t *testing.T) {
	old := NewSource
	defer func() { NewSource = old }()

	NewSource = func(r io.Reader, opts ParseOptions) (cifevents.Source, error) {
		return &scriptedSource{events: []cifevents.Event{
			{Kind: cifevents.CifStart},
			{Kind: cifevents.BlockStart, Code: "a"},
			{Kind: cifevents.Item, Item: cifevents.ItemInfo{
				Name:  "_x",
				Value: value.NewNumber("1", value.NumericMetadata{}),
			}},
			{Kind: cifevents.BlockEnd},
			{Kind: cifevents.CifEnd},
		}}, nil
	}

	opts := Options{
		InputFormat:         "auto",
		InputEncoding:       "auto",
		InputLineFolding:    true,
		InputTextPrefixing:  true,
		OutputFormat:        "cif20",
		OutputEncoding:      "auto",
		OutputLineFolding:   true,
		OutputTextPrefixing: true,
	}

	var stdout, stderr bytes.Buffer
	code := Run(opts, strings.NewReader(""), &stdout, &stderr, logrus.StandardLogger())

	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "data_a")
	require.Contains(t, stdout.String(), "_x")
	require.Empty(t, stderr.String())
}

func TestRun_NoSourceWiredReturnsUsageError(t *testing.T) {
	old := NewSource
	NewSource = old // default: reports not wired
	defer func() { NewSource = old }()

	opts := Options{
		InputFormat:  "auto",
		OutputFormat: "cif20",
	}
	var stdout, stderr bytes.Buffer
	code := Run(opts, strings.NewReader(""), &stdout, &stderr, logrus.StandardLogger())
	require.Equal(t, 2, code)
	require.NotEmpty(t, stderr.String())
}

func listDowngradeSource(io.Reader, ParseOptions) (cifevents.Source, error) {
	return &scriptedSource{events: []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		itemEventWithList(),
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	}}, nil
}

func itemEventWithList() cifevents.Event {
	return cifevents.Event{Kind: cifevents.Item, Item: cifevents.ItemInfo{
		Name: "_x",
		Value: value.NewList([]value.Value{
			value.NewNumber("1", value.NumericMetadata{}),
			value.NewNumber("2", value.NumericMetadata{}),
		}),
	}}
}

func TestRun_ListDowngradeNonStrictExits1(t *testing.T) {
	old := NewSource
	NewSource = listDowngradeSource
	defer func() { NewSource = old }()

	opts := Options{InputFormat: "auto", OutputFormat: "cif11"}
	var stdout, stderr bytes.Buffer
	code := Run(opts, strings.NewReader(""), &stdout, &stderr, logrus.StandardLogger())

	require.Equal(t, 1, code)
	require.NotEmpty(t, stderr.String())
}

func TestRun_ListDowngradeStrictExits3(t *testing.T) {
	old := NewSource
	NewSource = listDowngradeSource
	defer func() { NewSource = old }()

	opts := Options{InputFormat: "auto", OutputFormat: "cif11", Strict: true}
	var stdout, stderr bytes.Buffer
	code := Run(opts, strings.NewReader(""), &stdout, &stderr, logrus.StandardLogger())

	require.Equal(t, 3, code)
}

func TestRun_InvalidOutputDialectReturns2(t *testing.T) {
	opts := Options{InputFormat: "auto", OutputFormat: "not-a-dialect"}
	var stdout, stderr bytes.Buffer
	code := Run(opts, strings.NewReader(""), &stdout, &stderr, logrus.StandardLogger())
	require.Equal(t, 2, code)
}
