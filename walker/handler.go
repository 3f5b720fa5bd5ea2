package walker

import "github.com/ciftools/linguist/cifevents"

// Handler receives the eleven structural-boundary callbacks of
// spec.md §4.2, plus two side-channels (Whitespace, ParseError) that
// cannot affect traversal and so return no Directive.
//
// Concrete handlers embed BaseHandler and override only the callbacks
// they care about, matching the "eleven optional callbacks" language of
// spec.md §4.2.
type Handler interface {
	CifStart() Directive
	CifEnd() Directive
	BlockStart(code string) Directive
	BlockEnd() Directive
	FrameStart(code string) Directive
	FrameEnd() Directive
	LoopStart(info cifevents.LoopStartInfo) Directive
	LoopEnd() Directive
	PacketStart() Directive
	PacketEnd() Directive
	Item(info cifevents.ItemInfo) Directive

	// Whitespace delivers one captured whitespace/comment segment. It
	// cannot influence traversal (spec.md §4.3: the queue is consumed by
	// the emitter, not dispatched through traversal directives).
	Whitespace(text string)

	// ParseError delivers a parser-reported error (spec.md §4.6). Its
	// Directive follows the same rules as the structural callbacks:
	// Continue resumes the walk, Error aborts it.
	ParseError(info cifevents.ParseErrorInfo) Directive
}

// BaseHandler implements Handler with every structural callback returning
// Continue() and Whitespace/ParseError no-ops, so embedders only need to
// override what they use.
type BaseHandler struct{}

func (BaseHandler) CifStart() Directive                          { return Continue() }
func (BaseHandler) CifEnd() Directive                             { return Continue() }
func (BaseHandler) BlockStart(string) Directive                  { return Continue() }
func (BaseHandler) BlockEnd() Directive                           { return Continue() }
func (BaseHandler) FrameStart(string) Directive                  { return Continue() }
func (BaseHandler) FrameEnd() Directive                           { return Continue() }
func (BaseHandler) LoopStart(cifevents.LoopStartInfo) Directive  { return Continue() }
func (BaseHandler) LoopEnd() Directive                            { return Continue() }
func (BaseHandler) PacketStart() Directive                        { return Continue() }
func (BaseHandler) PacketEnd() Directive                          { return Continue() }
func (BaseHandler) Item(cifevents.ItemInfo) Directive             { return Continue() }
func (BaseHandler) Whitespace(string)                             {}
func (BaseHandler) ParseError(cifevents.ParseErrorInfo) Directive { return Continue() }
