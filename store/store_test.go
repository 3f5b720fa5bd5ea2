package store

import (
	"context"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
)

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, ctx
}

func TestCreateAndGetBlock(t *testing.T) {
	s, ctx := newTestStore(t)

	h, err := s.CreateBlock(ctx, "Crystal_1")
	require.NoError(t, err)

	got, err := s.GetBlock(ctx, "CRYSTAL_1")
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = s.GetBlock(ctx, "no_such_block")
	require.True(t, cerrors.Is(err, cerrors.NoSuchBlock))
}

func TestCreateBlockDuplicateCode(t *testing.T) {
	s, ctx := newTestStore(t)

	_, err := s.CreateBlock(ctx, "crystal_1")
	require.NoError(t, err)

	_, err = s.CreateBlock(ctx, "CRYSTAL_1")
	require.True(t, cerrors.Is(err, cerrors.DuplicateCode))
}

func TestFrameScopedToParentBlock(t *testing.T) {
	s, ctx := newTestStore(t)

	blockA, err := s.CreateBlock(ctx, "a")
	require.NoError(t, err)
	blockB, err := s.CreateBlock(ctx, "b")
	require.NoError(t, err)

	_, err = s.CreateFrame(ctx, blockA, "frame_1")
	require.NoError(t, err)
	// The same frame code is legal under a different parent block.
	_, err = s.CreateFrame(ctx, blockB, "frame_1")
	require.NoError(t, err)

	_, err = s.CreateFrame(ctx, blockA, "FRAME_1")
	require.True(t, cerrors.Is(err, cerrors.DuplicateCode))
}

func TestEnumerateBlocksOrder(t *testing.T) {
	s, ctx := newTestStore(t)

	for _, code := range []string{"first", "second", "third"} {
		_, err := s.CreateBlock(ctx, code)
		require.NoError(t, err)
	}

	_, codes, err := s.EnumerateBlocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, codes)
}

func TestDestroyContainerCascadesToFramesAndLoops(t *testing.T) {
	s, ctx := newTestStore(t)

	block, err := s.CreateBlock(ctx, "main")
	require.NoError(t, err)
	frame, err := s.CreateFrame(ctx, block, "inner")
	require.NoError(t, err)

	loop, err := s.CreateLoop(ctx, frame, "atom_site", []string{"_atom_site.label"})
	require.NoError(t, err)
	packet, err := s.AppendPacket(ctx, loop)
	require.NoError(t, err)
	require.NoError(t, s.SetValue(ctx, packet, "_atom_site.label", value.NewCharacter("C1", false)))

	require.NoError(t, s.DestroyContainer(ctx, block))

	_, err = s.GetFrame(ctx, block, "inner")
	require.True(t, cerrors.Is(err, cerrors.InvalidHandle) || cerrors.Is(err, cerrors.NoSuchFrame))
}

func TestLoopValueRoundTrip(t *testing.T) {
	s, ctx := newTestStore(t)

	block, err := s.CreateBlock(ctx, "main")
	require.NoError(t, err)

	loop, err := s.CreateLoop(ctx, block, "cell", []string{"_cell.length_a", "_cell.length_b"})
	require.NoError(t, err)

	packet, err := s.AppendPacket(ctx, loop)
	require.NoError(t, err)

	meta := value.NumericMetadata{}
	require.NoError(t, s.SetValue(ctx, packet, "_cell.length_a", value.NewNumber("5.4300", meta)))
	require.NoError(t, s.SetValue(ctx, packet, "_cell.length_b", value.NewCharacter("five point four", true)))

	a, err := s.PacketValue(ctx, packet, "_cell.length_a")
	require.NoError(t, err)
	assert.Equal(t, value.Number, a.Kind())
	text, _ := a.Text()
	assert.Equal(t, "5.4300", text)

	b, err := s.PacketValue(ctx, packet, "_cell.length_b")
	require.NoError(t, err)
	assert.True(t, b.Quoted())
}

func TestListAndTableValuesRoundTrip(t *testing.T) {
	s, ctx := newTestStore(t)

	block, err := s.CreateBlock(ctx, "main")
	require.NoError(t, err)
	loop, err := s.CreateLoop(ctx, block, "", []string{"_things"})
	require.NoError(t, err)
	packet, err := s.AppendPacket(ctx, loop)
	require.NoError(t, err)

	list := value.NewList([]value.Value{
		value.NewCharacter("a", false),
		value.NewCharacter("b", false),
	})
	require.NoError(t, s.SetValue(ctx, packet, "_things", list))

	got, err := s.PacketValue(ctx, packet, "_things")
	require.NoError(t, err)
	require.Equal(t, value.List, got.Kind())
	require.True(t, value.Equal(list, got), "want %s, got %s", repr.String(list), repr.String(got))

	table := value.NewTable([]value.TableEntry{
		{KeyNormalized: "x", KeyOriginal: "x", Value: value.NewNumber("1", value.NumericMetadata{})},
	})
	require.NoError(t, s.SetValue(ctx, packet, "_things", table))

	got, err = s.PacketValue(ctx, packet, "_things")
	require.NoError(t, err)
	require.True(t, value.Equal(table, got), "want %s, got %s", repr.String(table), repr.String(got))
}

func TestRemovePacketDestroysEmptiedLoop(t *testing.T) {
	s, ctx := newTestStore(t)

	block, err := s.CreateBlock(ctx, "main")
	require.NoError(t, err)
	loop, err := s.CreateLoop(ctx, block, "atom_site", []string{"_atom_site.label"})
	require.NoError(t, err)
	packet, err := s.AppendPacket(ctx, loop)
	require.NoError(t, err)

	require.NoError(t, s.RemovePacket(ctx, loop, packet))

	_, err = s.GetLoopByCategory(ctx, block, "atom_site")
	require.True(t, cerrors.Is(err, cerrors.NoSuchLoop))
}

func TestPacketCursorToleratesMutation(t *testing.T) {
	s, ctx := newTestStore(t)

	block, err := s.CreateBlock(ctx, "main")
	require.NoError(t, err)
	loop, err := s.CreateLoop(ctx, block, "atom_site", []string{"_atom_site.label"})
	require.NoError(t, err)

	var packets []PacketHandle
	for i := 0; i < 3; i++ {
		p, err := s.AppendPacket(ctx, loop)
		require.NoError(t, err)
		packets = append(packets, p)
	}

	cur, err := s.Packets(ctx, loop)
	require.NoError(t, err)

	ok, err := cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, packets[0], cur.Packet())

	require.NoError(t, s.RemovePacket(ctx, loop, packets[1]))

	ok, err = cur.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, packets[2], cur.Packet())

	ok, err = cur.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidHandleFromDifferentStore(t *testing.T) {
	s1, ctx := newTestStore(t)
	s2, _ := newTestStore(t)

	h, err := s1.CreateBlock(ctx, "main")
	require.NoError(t, err)

	_, err = s2.GetFrame(ctx, h, "frame")
	require.True(t, cerrors.Is(err, cerrors.InvalidHandle))
}

func TestAddLoopItemBackfillsUnknown(t *testing.T) {
	s, ctx := newTestStore(t)

	block, err := s.CreateBlock(ctx, "main")
	require.NoError(t, err)
	loop, err := s.CreateLoop(ctx, block, "atom_site", []string{"_atom_site.label"})
	require.NoError(t, err)
	packet, err := s.AppendPacket(ctx, loop)
	require.NoError(t, err)

	require.NoError(t, s.AddLoopItem(ctx, loop, "_atom_site.type_symbol"))

	v, err := s.PacketValue(ctx, packet, "_atom_site.type_symbol")
	require.NoError(t, err)
	assert.Equal(t, value.Unknown, v.Kind())
}
