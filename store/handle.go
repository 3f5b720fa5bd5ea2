package store

import "github.com/gofrs/uuid"

// ContainerHandle identifies a block or save frame. It embeds the owning
// Store's generation so a handle obtained from a since-destroyed or
// reopened Store is recognized as stale (errors.InvalidHandle) without a
// round trip to the database (spec.md §9 design note: "handles are
// (generation, id) pairs").
type ContainerHandle struct {
	generation uuid.UUID
	id         int64
}

// LoopHandle identifies a loop within a container.
type LoopHandle struct {
	generation uuid.UUID
	id         int64
}

func (h ContainerHandle) valid(gen uuid.UUID) bool { return h.generation == gen && h.id != 0 }
func (h LoopHandle) valid(gen uuid.UUID) bool      { return h.generation == gen && h.id != 0 }
