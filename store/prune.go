package store

import (
	"context"
	"database/sql"

	cerrors "github.com/ciftools/linguist/errors"
)

// PruneEmptyLoops removes every non-scalar loop of parent that has no
// packets. RemovePacket already does this for the loop it just emptied;
// PruneEmptyLoops exists for the case spec.md §4.1 calls out separately,
// a loop emptied some other way (its last AddLoopItem target having been
// the only thing keeping the loop referenced, or a bulk import that built
// loop rows before any packet) and never through RemovePacket's own path.
func (s *Store) PruneEmptyLoops(ctx context.Context, parent ContainerHandle) error {
	if err := s.checkContainer(parent); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM loop
			WHERE container_id = ?
			  AND category != ?
			  AND id NOT IN (SELECT DISTINCT loop_id FROM packet)
		`, parent.id, scalarCategory)
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to prune empty loops: %v", err)
		}
		return nil
	})
}

// PruneEmptyFrames removes every save frame nested directly in parent
// that holds no loops at all (spec.md §4.1 "an emptied save frame may be
// discarded"). It does not recurse into a frame's own nested state; CIF
// save frames do not nest, so one level suffices.
func (s *Store) PruneEmptyFrames(ctx context.Context, parent ContainerHandle) error {
	if err := s.checkContainer(parent); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM container
			WHERE parent_id = ?
			  AND id NOT IN (SELECT DISTINCT container_id FROM loop)
		`, parent.id)
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to prune empty frames: %v", err)
		}
		return nil
	})
}
