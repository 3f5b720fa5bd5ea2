// Package whitespace implements the two-level whitespace queue of
// spec.md §3 ("Whitespace node") and §4.3: an ordered sequence of runs,
// each an ordered sequence of pieces, captured between semantic tokens
// during parsing and consumed lazily by the emitter.
//
// The original cif_api links pieces and runs with intrusive next_piece /
// next_run pointers (spec.md §9, design note). Here a Run is simply a
// struct holding a []Piece, and the Queue is a []*Run — the same move the
// teacher project makes from an intrusive token list to a plain
// []Unparsed slice on Batch (sqlparser/sqldocument/batch.go).
package whitespace

// Piece is one contiguous run-fragment reported by a single parser
// callback: whitespace characters, or a comment.
type Piece struct {
	Text string
}

// Run is the whitespace between two semantic tokens, made of one or more
// Pieces reported by successive parser callbacks before the next token (or
// explicit zero-length boundary) arrived.
type Run struct {
	Pieces []Piece
}

// Text concatenates all of the run's pieces in order.
func (r *Run) Text() string {
	if len(r.Pieces) == 1 {
		return r.Pieces[0].Text
	}
	var out []byte
	for _, p := range r.Pieces {
		out = append(out, p.Text...)
	}
	return string(out)
}

// Queue is the emitter's exclusively-owned, ordered sequence of captured
// runs (spec.md §3 "Ownership"). It also carries the single in-run flag
// described in spec.md §4.3 that governs whether the next captured
// whitespace segment appends to the current run (a "piece") or opens a
// new one.
type Queue struct {
	runs  []*Run
	inRun bool
}

// New returns an empty Queue, ready to accept whitespace reports.
func New() *Queue {
	return &Queue{}
}

// Push records one whitespace segment reported by the parser. A
// zero-length segment is the parser's explicit signal of an intentional
// empty boundary; per spec.md §4.3 it clears the in-run flag (so the next
// non-empty segment, even if reported immediately afterward, starts a new
// run) without itself creating a Piece or Run.
func (q *Queue) Push(text string) {
	if text == "" {
		q.inRun = false
		return
	}
	if q.inRun && len(q.runs) > 0 {
		last := q.runs[len(q.runs)-1]
		last.Pieces = append(last.Pieces, Piece{Text: text})
		return
	}
	q.runs = append(q.runs, &Run{Pieces: []Piece{{Text: text}}})
	q.inRun = true
}

// EndRun is called by the parser callback boundary (a semantic token
// arriving) to force the next Push to begin a new run rather than append
// to the last one.
func (q *Queue) EndRun() {
	q.inRun = false
}

// Len reports the number of runs currently queued.
func (q *Queue) Len() int {
	return len(q.runs)
}

// Peek returns the next run without consuming it, or nil if the queue is
// empty.
func (q *Queue) Peek() *Run {
	if len(q.runs) == 0 {
		return nil
	}
	return q.runs[0]
}

// Consume removes and returns the next run in the queue, freeing it from
// the queue's own bookkeeping (spec.md §3 "Lifecycle: ... consumed (and
// freed) by the emitter"). It returns nil, false if the queue is empty.
func (q *Queue) Consume() (*Run, bool) {
	if len(q.runs) == 0 {
		return nil, false
	}
	r := q.runs[0]
	q.runs = q.runs[1:]
	return r, true
}

// ConsumeAll removes and returns every queued run, in order, emptying the
// queue. Used by the emitter at value positions that are permitted to
// swallow all pending whitespace before the token (spec.md §4.5, "consume
// the next run (or all cached runs, for certain value positions)").
func (q *Queue) ConsumeAll() []*Run {
	all := q.runs
	q.runs = nil
	return all
}

// Drain discards every queued run without returning them, used by the
// emitter's best-effort cleanup on error (spec.md §7: "freeing queued
// whitespace").
func (q *Queue) Drain() {
	q.runs = nil
	q.inRun = false
}
