package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciftools/linguist/cifevents"
	"github.com/ciftools/linguist/dialect"
	"github.com/ciftools/linguist/emit"
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
	"github.com/ciftools/linguist/walker"
	"github.com/ciftools/linguist/whitespace"
)

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

func itemEvent(name string, v value.Value) cifevents.Event {
	return cifevents.Event{Kind: cifevents.Item, Item: cifevents.ItemInfo{Name: name, Value: v}}
}

func runEmitter(t *testing.T, d dialect.Dialect, opts emit.Options, events []cifevents.Event) string {
	t.Helper()
	var out strings.Builder
	queue := whitespace.New()
	e := emit.New(&out, d, queue, opts)
	require.NoError(t, walker.Walk(&scriptedSource{events: events}, e))
	require.NoError(t, e.Flush())
	require.NoError(t, e.Err())
	return out.String()
}

func TestEmptyCIF(t *testing.T) {
	got := runEmitter(t, dialect.CIF20, emit.Options{}, []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.CifEnd},
	})
	require.Equal(t, "#\\#CIF_2.0\n\n", got)
}

func TestSimpleScalar(t *testing.T) {
	got := runEmitter(t, dialect.CIF20, emit.Options{}, []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		itemEvent("_x", value.NewNumber("1", value.NumericMetadata{})),
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	})
	require.True(t, strings.HasPrefix(got, "#\\#CIF_2.0\n"))
	require.Contains(t, got, "data_a")
	require.Contains(t, got, "_x")
	require.Contains(t, got, "1")
}

func TestDowngradeRejectsList(t *testing.T) {
	var out strings.Builder
	queue := whitespace.New()
	e := emit.New(&out, dialect.CIF11, queue, emit.Options{})
	events := []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		itemEvent("_x", value.NewList([]value.Value{
			value.NewNumber("1", value.NumericMetadata{}),
			value.NewNumber("2", value.NumericMetadata{}),
			value.NewNumber("3", value.NumericMetadata{}),
		})),
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	}
	err := walker.Walk(&scriptedSource{events: events}, e)
	require.Error(t, err)
	require.True(t, cerrors.Is(err, cerrors.DisallowedValue))
}

func TestOverlengthNumberRejectedWithoutFolding(t *testing.T) {
	var out strings.Builder
	queue := whitespace.New()
	e := emit.New(&out, dialect.CIF20, queue, emit.Options{})
	events := []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		itemEvent("_x", value.NewNumber(strings.Repeat("1", 3000), value.NumericMetadata{})),
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	}
	err := walker.Walk(&scriptedSource{events: events}, e)
	require.Error(t, err)
	require.True(t, cerrors.Is(err, cerrors.OverlengthLine))
}

func TestEmptyLoopFixup(t *testing.T) {
	var out strings.Builder
	queue := whitespace.New()
	e := emit.New(&out, dialect.CIF20, queue, emit.Options{})
	e.RequestSynthesizePacket()

	events := []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		{Kind: cifevents.LoopStart, LoopStartInfo: cifevents.LoopStartInfo{Names: []string{"_a", "_b"}}},
		{Kind: cifevents.LoopEnd},
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	}
	require.NoError(t, walker.Walk(&scriptedSource{events: events}, e))
	require.NoError(t, e.Flush())

	got := out.String()
	require.Equal(t, 1, strings.Count(got, "? ?\n"))
	require.Contains(t, got, "loop_ _a _b\n ? ?\n")
}

func TestLongLineFolds(t *testing.T) {
	var sb strings.Builder
	for sb.Len() < 3000 {
		sb.WriteByte('x')
	}
	text := sb.String()

	got := runEmitter(t, dialect.CIF20, emit.Options{AllowOutputFolding: true}, []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		itemEvent("_x", value.NewCharacter(text, true)),
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	})

	require.Contains(t, got, "\n;\\\n")
	for _, line := range strings.Split(got, "\n") {
		require.LessOrEqual(t, len(line), dialect.MaxFoldLength+1)
	}
}

func TestPrefixingWhenValueContainsSemicolon(t *testing.T) {
	got := runEmitter(t, dialect.CIF20, emit.Options{AllowOutputPrefixing: true}, []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.BlockStart, Code: "a"},
		itemEvent("_x", value.NewCharacter("line\n;inside", true)),
		{Kind: cifevents.BlockEnd},
		{Kind: cifevents.CifEnd},
	})

	require.Contains(t, got, "> \\\n")
	require.True(t, strings.Contains(got, "> line\n") || strings.Contains(got, "> line\\\n"))
	require.Contains(t, got, "> ;inside")
}
