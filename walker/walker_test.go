package walker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ciftools/linguist/cifevents"
	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/walker"
)

// scriptedSource replays a fixed slice of events, the stand-in for the
// external CIF parser used throughout this repository's tests.
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

func blockStart(code string) cifevents.Event { return cifevents.Event{Kind: cifevents.BlockStart, Code: code} }
func blockEnd() cifevents.Event              { return cifevents.Event{Kind: cifevents.BlockEnd} }
func itemEvent(name string) cifevents.Event {
	return cifevents.Event{Kind: cifevents.Item, Item: cifevents.ItemInfo{Name: name}}
}

type recordingHandler struct {
	walker.BaseHandler
	calls []string
}

func (r *recordingHandler) CifStart() walker.Directive {
	r.calls = append(r.calls, "cif-start")
	return walker.Continue()
}
func (r *recordingHandler) CifEnd() walker.Directive {
	r.calls = append(r.calls, "cif-end")
	return walker.Continue()
}
func (r *recordingHandler) BlockStart(code string) walker.Directive {
	r.calls = append(r.calls, "block-start:"+code)
	return walker.Continue()
}
func (r *recordingHandler) BlockEnd() walker.Directive {
	r.calls = append(r.calls, "block-end")
	return walker.Continue()
}
func (r *recordingHandler) Item(info cifevents.ItemInfo) walker.Directive {
	r.calls = append(r.calls, "item:"+info.Name)
	return walker.Continue()
}

func TestWalk_VisitsEverythingInOrder(t *testing.T) {
	src := &scriptedSource{events: []cifevents.Event{
		{Kind: cifevents.CifStart},
		blockStart("a"),
		itemEvent("_x"),
		blockEnd(),
		{Kind: cifevents.CifEnd},
	}}
	h := &recordingHandler{}
	require.NoError(t, walker.Walk(src, h))
	require.Equal(t, []string{"cif-start", "block-start:a", "item:_x", "block-end", "cif-end"}, h.calls)
}

type skipCurrentHandler struct {
	walker.BaseHandler
	calls []string
}

func (h *skipCurrentHandler) BlockStart(code string) walker.Directive {
	h.calls = append(h.calls, "block-start:"+code)
	if code == "skipme" {
		return walker.SkipCurrent()
	}
	return walker.Continue()
}
func (h *skipCurrentHandler) BlockEnd() walker.Directive {
	h.calls = append(h.calls, "block-end")
	return walker.Continue()
}
func (h *skipCurrentHandler) Item(info cifevents.ItemInfo) walker.Directive {
	h.calls = append(h.calls, "item:"+info.Name)
	return walker.Continue()
}

func TestWalk_SkipCurrentSkipsChildrenAndEndCallback(t *testing.T) {
	src := &scriptedSource{events: []cifevents.Event{
		{Kind: cifevents.CifStart},
		blockStart("skipme"),
		itemEvent("_hidden"),
		blockEnd(), // matching end for "skipme"; its BlockEnd callback must not fire
		blockStart("visible"),
		itemEvent("_shown"),
		blockEnd(),
		{Kind: cifevents.CifEnd},
	}}
	h := &skipCurrentHandler{}
	require.NoError(t, walker.Walk(src, h))
	require.Equal(t, []string{
		"block-start:skipme",
		"block-start:visible",
		"item:_shown",
		"block-end",
	}, h.calls)
}

type skipSiblingsHandler struct {
	walker.BaseHandler
	calls []string
}

func (h *skipSiblingsHandler) LoopStart(info cifevents.LoopStartInfo) walker.Directive {
	h.calls = append(h.calls, "loop-start")
	return walker.Continue()
}
func (h *skipSiblingsHandler) PacketStart() walker.Directive {
	h.calls = append(h.calls, "packet-start")
	return walker.Continue()
}
func (h *skipSiblingsHandler) PacketEnd() walker.Directive {
	h.calls = append(h.calls, "packet-end")
	return walker.SkipSiblings()
}
func (h *skipSiblingsHandler) LoopEnd() walker.Directive {
	h.calls = append(h.calls, "loop-end")
	return walker.Continue()
}

func TestWalk_SkipSiblingsSkipsRemainingSiblingsOnly(t *testing.T) {
	src := &scriptedSource{events: []cifevents.Event{
		{Kind: cifevents.CifStart},
		{Kind: cifevents.LoopStart, LoopStartInfo: cifevents.LoopStartInfo{Names: []string{"_a"}}},
		{Kind: cifevents.PacketStart},
		{Kind: cifevents.PacketEnd}, // triggers SkipSiblings
		{Kind: cifevents.PacketStart},
		{Kind: cifevents.PacketEnd},
		{Kind: cifevents.LoopEnd},
		{Kind: cifevents.CifEnd},
	}}
	h := &skipSiblingsHandler{}
	require.NoError(t, walker.Walk(src, h))
	require.Equal(t, []string{
		"loop-start", "packet-start", "packet-end", "loop-end",
	}, h.calls)
}

type endingHandler struct {
	walker.BaseHandler
	calls int
}

func (h *endingHandler) Item(cifevents.ItemInfo) walker.Directive {
	h.calls++
	return walker.End()
}

func TestWalk_EndTerminatesImmediately(t *testing.T) {
	src := &scriptedSource{events: []cifevents.Event{
		{Kind: cifevents.CifStart},
		itemEvent("_a"),
		itemEvent("_b"),
		{Kind: cifevents.CifEnd},
	}}
	h := &endingHandler{}
	require.NoError(t, walker.Walk(src, h))
	require.Equal(t, 1, h.calls)
}

type erroringHandler struct {
	walker.BaseHandler
}

var errBoom = cerrors.New(cerrors.InternalError, "boom")

func (erroringHandler) Item(cifevents.ItemInfo) walker.Directive {
	return walker.Error(errBoom)
}

func TestWalk_ErrorDirectivePropagates(t *testing.T) {
	src := &scriptedSource{events: []cifevents.Event{
		{Kind: cifevents.CifStart},
		itemEvent("_a"),
	}}
	err := walker.Walk(src, erroringHandler{})
	require.ErrorIs(t, err, errBoom)
}
