package store

import (
	"context"
	"database/sql"
	"errors"

	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/name"
)

// scalarCategory is the distinguished category of the implicit loop that
// holds a container's non-looped items (spec.md §3 "a container's scalar
// items are modeled as a one-packet loop with no declared category").
const scalarCategory = ""

// CreateLoop declares a new loop of the given category within parent, with
// the given item names. Item names must be unique within the whole
// container (spec.md §4.1 invariant "item names unique per container"),
// so a collision with any existing loop's items fails with DuplicateCode.
func (s *Store) CreateLoop(ctx context.Context, parent ContainerHandle, category string, originalNames []string) (LoopHandle, error) {
	if err := s.checkContainer(parent); err != nil {
		return LoopHandle{}, err
	}
	if len(originalNames) == 0 {
		return LoopHandle{}, cerrors.New(cerrors.ArgumentError, "a loop must declare at least one item name")
	}

	normalized := make([]name.Normalized, len(originalNames))
	for i, n := range originalNames {
		nn, err := name.Normalize(n, cerrors.InvalidItemname)
		if err != nil {
			return LoopHandle{}, err
		}
		normalized[i] = nn
	}
	for i := range normalized {
		for j := i + 1; j < len(normalized); j++ {
			if normalized[i] == normalized[j] {
				return LoopHandle{}, cerrors.New(cerrors.DuplicateCode, "item name %q repeated in loop declaration", originalNames[i])
			}
		}
	}

	var loopID int64
	txErr := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO loop(container_id, category) VALUES (?, ?)`, parent.id, category)
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to insert loop: %v", err)
		}
		loopID, err = res.LastInsertId()
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to read new loop id: %v", err)
		}

		for i, nn := range normalized {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO loop_item(loop_id, container_id, name_normalized, name_original) VALUES (?, ?, ?, ?)`,
				loopID, parent.id, string(nn), originalNames[i])
			if err != nil {
				if isUniqueConstraint(err) {
					return cerrors.New(cerrors.DuplicateCode, "item %q already exists in this container", originalNames[i])
				}
				return cerrors.New(cerrors.EnvironmentError, "failed to insert loop item: %v", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return LoopHandle{}, txErr
	}
	return LoopHandle{generation: s.generation, id: loopID}, nil
}

// SetCategory changes a loop's declared category (spec.md §4.1 "set
// category").
func (s *Store) SetCategory(ctx context.Context, loop LoopHandle, category string) error {
	if err := s.checkLoop(loop); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE loop SET category = ? WHERE id = ?`, category, loop.id); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to set category: %v", err)
		}
		return nil
	})
}

// AddLoopItem declares a new item name on an already-existing loop. Every
// packet already present in the loop gains an Unknown value for the new
// name (spec.md §4.1 "widening a loop backfills `?` for existing rows").
func (s *Store) AddLoopItem(ctx context.Context, loop LoopHandle, originalName string) error {
	if err := s.checkLoop(loop); err != nil {
		return err
	}
	normalized, err := name.Normalize(originalName, cerrors.InvalidItemname)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var containerID int64
		if err := tx.QueryRowContext(ctx, `SELECT container_id FROM loop WHERE id = ?`, loop.id).Scan(&containerID); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to resolve loop's container: %v", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO loop_item(loop_id, container_id, name_normalized, name_original) VALUES (?, ?, ?, ?)`,
			loop.id, containerID, string(normalized), originalName); err != nil {
			if isUniqueConstraint(err) {
				return cerrors.New(cerrors.DuplicateCode, "item %q already exists in this container", originalName)
			}
			return cerrors.New(cerrors.EnvironmentError, "failed to insert loop item: %v", err)
		}

		rows, err := tx.QueryContext(ctx, `SELECT id FROM packet WHERE loop_id = ?`, loop.id)
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to enumerate packets: %v", err)
		}
		defer rows.Close()
		var packetIDs []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return cerrors.New(cerrors.EnvironmentError, "failed to scan packet id: %v", err)
			}
			packetIDs = append(packetIDs, id)
		}
		if err := rows.Err(); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to iterate packets: %v", err)
		}

		for _, pid := range packetIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO value(packet_id, name_normalized, kind, text, quoted, numeric_su) VALUES (?, ?, ?, NULL, 0, NULL)`,
				pid, string(normalized), int(unknownKind)); err != nil {
				return cerrors.New(cerrors.EnvironmentError, "failed to backfill value: %v", err)
			}
		}
		return nil
	})
}

// GetLoopByCategory finds the loop of the given category within parent.
// Fails with NoSuchLoop if none exists.
func (s *Store) GetLoopByCategory(ctx context.Context, parent ContainerHandle, category string) (LoopHandle, error) {
	if err := s.checkContainer(parent); err != nil {
		return LoopHandle{}, err
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM loop WHERE container_id = ? AND category = ?`, parent.id, category).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return LoopHandle{}, cerrors.New(cerrors.NoSuchLoop, "no loop of category %q", category)
	}
	if err != nil {
		return LoopHandle{}, cerrors.New(cerrors.EnvironmentError, "lookup failed: %v", err)
	}
	return LoopHandle{generation: s.generation, id: id}, nil
}

// GetLoopByName finds the loop that declares the given item name within
// parent. Fails with NoSuchItem if no loop declares it.
func (s *Store) GetLoopByName(ctx context.Context, parent ContainerHandle, originalName string) (LoopHandle, error) {
	if err := s.checkContainer(parent); err != nil {
		return LoopHandle{}, err
	}
	normalized, err := name.Normalize(originalName, cerrors.InvalidItemname)
	if err != nil {
		return LoopHandle{}, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT loop_id FROM loop_item WHERE container_id = ? AND name_normalized = ?`, parent.id, string(normalized)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return LoopHandle{}, cerrors.New(cerrors.NoSuchItem, "no item named %q", originalName)
	}
	if err != nil {
		return LoopHandle{}, cerrors.New(cerrors.EnvironmentError, "lookup failed: %v", err)
	}
	return LoopHandle{generation: s.generation, id: id}, nil
}

// EnumerateLoops returns every loop's handle and category within parent,
// in creation order, including the scalar loop if one exists.
func (s *Store) EnumerateLoops(ctx context.Context, parent ContainerHandle) ([]LoopHandle, []string, error) {
	if err := s.checkContainer(parent); err != nil {
		return nil, nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category FROM loop WHERE container_id = ? ORDER BY id`, parent.id)
	if err != nil {
		return nil, nil, cerrors.New(cerrors.EnvironmentError, "enumeration failed: %v", err)
	}
	defer rows.Close()

	var handles []LoopHandle
	var categories []string
	for rows.Next() {
		var id int64
		var category string
		if err := rows.Scan(&id, &category); err != nil {
			return nil, nil, cerrors.New(cerrors.EnvironmentError, "enumeration scan failed: %v", err)
		}
		handles = append(handles, LoopHandle{generation: s.generation, id: id})
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, cerrors.New(cerrors.EnvironmentError, "enumeration iteration failed: %v", err)
	}
	return handles, categories, nil
}

// itemNames returns the declared (normalized, original) item names of loop
// in the order they were added; shared by packet.go and value.go.
func (s *Store) itemNames(ctx context.Context, loopID int64) ([]name.Normalized, []string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name_normalized, name_original FROM loop_item WHERE loop_id = ? ORDER BY rowid`, loopID)
	if err != nil {
		return nil, nil, cerrors.New(cerrors.EnvironmentError, "failed to list loop items: %v", err)
	}
	defer rows.Close()

	var normalized []name.Normalized
	var original []string
	for rows.Next() {
		var nn, orig string
		if err := rows.Scan(&nn, &orig); err != nil {
			return nil, nil, cerrors.New(cerrors.EnvironmentError, "failed to scan loop item: %v", err)
		}
		normalized = append(normalized, name.Normalized(nn))
		original = append(original, orig)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, cerrors.New(cerrors.EnvironmentError, "failed to iterate loop items: %v", err)
	}
	return normalized, original, nil
}
