package walker

import (
	"github.com/ciftools/linguist/cifevents"
	cerrors "github.com/ciftools/linguist/errors"
)

// Walk drives h through every event produced by src, depth-first, in the
// order src reports them (spec.md §4.2: "Traversal is depth-first in
// insertion order"). It returns the first error reported by src or by a
// Handler callback's Error directive; a clean End directive or Source
// exhaustion both return nil.
//
// Skip regions (SkipCurrent, SkipSiblings) are tracked with a single
// "resume below this depth" counter rather than a per-level flag stack:
// once a region is being skipped, the handler is never invoked again
// until the region's closing End event is consumed, so no second,
// independent skip request can arise while one is already active — a
// single counter is therefore sufficient to track arbitrarily nested
// structure inside the skipped region. The closing End event of a
// SkipCurrent region is the skipped element's own end and is not
// delivered; that of a SkipSiblings region is the parent's end and is.
func Walk(src cifevents.Source, h Handler) error {
	depth := 0
	skipUntilBelow := -1 // -1: no skip region active
	skipDeliversEnd := false

	for {
		ev, err := src.Next()
		if err != nil {
			if cifevents.IsFinished(err) {
				return nil
			}
			return err
		}

		isStart := isStartKind(ev.Kind)
		isEnd := isEndKind(ev.Kind)

		if skipUntilBelow >= 0 {
			if isStart {
				depth++
				continue
			}
			if !isEnd {
				continue
			}
			if depth == 0 {
				return cerrors.New(cerrors.InternalError, "walker: end event with no matching start")
			}
			if depth-1 >= skipUntilBelow || !skipDeliversEnd {
				depth--
				if depth < skipUntilBelow {
					skipUntilBelow = -1
				}
				continue
			}
			// The parent's end after SkipSiblings: deliver it normally.
			skipUntilBelow = -1
		}

		d, err := invoke(h, ev)
		if err != nil {
			return err
		}
		if !d.valid() {
			return cerrors.New(cerrors.InternalError, "walker: unknown directive for event %v", ev.Kind)
		}
		if d.code == errorCode {
			return d.asError()
		}
		if d.code == endCode {
			return nil
		}

		switch {
		case isStart:
			depth++
			if d.code == skipCurrentCode {
				skipUntilBelow = depth
				skipDeliversEnd = false
			}
		case isEnd:
			if depth == 0 {
				return cerrors.New(cerrors.InternalError, "walker: end event with no matching start")
			}
			depth--
			if d.code == skipSiblingsCode {
				skipUntilBelow = depth
				skipDeliversEnd = true
			}
		}
	}
}

func isStartKind(k cifevents.EventKind) bool {
	switch k {
	case cifevents.BlockStart, cifevents.FrameStart, cifevents.LoopStart, cifevents.PacketStart:
		return true
	default:
		return false
	}
}

func isEndKind(k cifevents.EventKind) bool {
	switch k {
	case cifevents.BlockEnd, cifevents.FrameEnd, cifevents.LoopEnd, cifevents.PacketEnd:
		return true
	default:
		return false
	}
}

// invoke calls the Handler method matching ev.Kind.
func invoke(h Handler, ev cifevents.Event) (Directive, error) {
	switch ev.Kind {
	case cifevents.CifStart:
		return h.CifStart(), nil
	case cifevents.CifEnd:
		return h.CifEnd(), nil
	case cifevents.BlockStart:
		return h.BlockStart(ev.Code), nil
	case cifevents.BlockEnd:
		return h.BlockEnd(), nil
	case cifevents.FrameStart:
		return h.FrameStart(ev.Code), nil
	case cifevents.FrameEnd:
		return h.FrameEnd(), nil
	case cifevents.LoopStart:
		return h.LoopStart(ev.LoopStartInfo), nil
	case cifevents.LoopEnd:
		return h.LoopEnd(), nil
	case cifevents.PacketStart:
		return h.PacketStart(), nil
	case cifevents.PacketEnd:
		return h.PacketEnd(), nil
	case cifevents.Item:
		return h.Item(ev.Item), nil
	case cifevents.Whitespace:
		h.Whitespace(ev.WhitespaceText)
		return Continue(), nil
	case cifevents.ParseError:
		return h.ParseError(ev.ParseErrorInfo), nil
	default:
		return Directive{}, cerrors.New(cerrors.InternalError, "walker: unrecognized event kind %v", ev.Kind)
	}
}
