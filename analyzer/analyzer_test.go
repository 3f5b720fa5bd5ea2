package analyzer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciftools/linguist/analyzer"
)

func TestAnalyze_BareWordNeedsNoDelimiter(t *testing.T) {
	a := analyzer.Analyze("hello", true, true, 2048)
	require.Equal(t, analyzer.DelimNone, a.DelimLength)
	require.Equal(t, 1, a.NumLines)
}

func TestAnalyze_ReservedStartForcesDelimiter(t *testing.T) {
	a := analyzer.Analyze("loop_of_fate", true, true, 2048)
	require.True(t, a.HasReservedStart)
	require.NotEqual(t, analyzer.DelimNone, a.DelimLength)
}

func TestAnalyze_PicksUnusedQuoteCharacter(t *testing.T) {
	a := analyzer.Analyze(`it's here`, true, true, 2048)
	require.Equal(t, analyzer.DelimQuote, a.DelimLength)
	require.Equal(t, byte('"'), a.Delim)
}

func TestAnalyze_BothQuotesPresentForcesTextFieldWithoutTripleQuote(t *testing.T) {
	a := analyzer.Analyze(`she said "it's" fine`, true, false, 2048)
	require.Equal(t, analyzer.DelimTextField, a.DelimLength)
}

func TestAnalyze_BothQuotesPresentPrefersTripleQuoteWhenAllowed(t *testing.T) {
	a := analyzer.Analyze(`she said "it's" fine`, true, true, 2048)
	require.Equal(t, analyzer.DelimTripleQuote, a.DelimLength)
}

func TestAnalyze_MultilineRequiresTextFieldOrTripleQuote(t *testing.T) {
	a := analyzer.Analyze("line one\nline two", true, false, 2048)
	require.Equal(t, analyzer.DelimTextField, a.DelimLength)
	require.Equal(t, 2, a.NumLines)
}

func TestAnalyze_TrailingWhitespaceDetected(t *testing.T) {
	a := analyzer.Analyze("trailing space ", true, false, 2048)
	require.True(t, a.HasTrailingWS)
}

func TestAnalyze_MaxSemiRun(t *testing.T) {
	text := "a\n;;;b\n;c"
	a := analyzer.Analyze(text, true, false, 2048)
	require.Equal(t, 3, a.MaxSemiRun)
}

func TestAnalyze_EmbeddedTextFieldCloserDetected(t *testing.T) {
	a := analyzer.Analyze("line\n;inside", true, false, 2048)
	require.True(t, a.ContainsTextDelim)
}

func TestAnalyze_OverlongSingleLineForcesTextField(t *testing.T) {
	long := strings.Repeat("x", 3000)
	a := analyzer.Analyze(long, true, true, 2048)
	require.Equal(t, analyzer.DelimTextField, a.DelimLength)
}

func TestAnalyze_LengthMaxAcrossLines(t *testing.T) {
	long := strings.Repeat("x", 50)
	a := analyzer.Analyze("short\n"+long, true, false, 2048)
	require.Equal(t, 50, a.LengthMax)
	require.Equal(t, len("short"), a.LengthFirst)
	require.Equal(t, 50, a.LengthLast)
}
