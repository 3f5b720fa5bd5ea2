package store

import (
	"context"
	"database/sql"

	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/value"
)

// PacketHandle identifies one row of a loop. It is only ever used together
// with the LoopHandle it was obtained from, so unlike ContainerHandle and
// LoopHandle it carries no generation of its own.
type PacketHandle struct {
	id int64
}

// AppendPacket adds a new, empty (all-Unknown) packet as the last row of
// loop (spec.md §4.1 "append packet"). Every declared item name of the
// loop gets an Unknown placeholder, so the packet is immediately visible
// with a full, consistent column set.
func (s *Store) AppendPacket(ctx context.Context, loop LoopHandle) (PacketHandle, error) {
	if err := s.checkLoop(loop); err != nil {
		return PacketHandle{}, err
	}
	normalizedNames, _, err := s.itemNames(ctx, loop.id)
	if err != nil {
		return PacketHandle{}, err
	}

	var packetID int64
	txErr := s.withTx(ctx, func(tx *sql.Tx) error {
		var maxRow sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MAX(row_number) FROM packet WHERE loop_id = ?`, loop.id).Scan(&maxRow); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to compute next row number: %v", err)
		}
		nextRow := int64(0)
		if maxRow.Valid {
			nextRow = maxRow.Int64 + 1
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO packet(loop_id, row_number) VALUES (?, ?)`, loop.id, nextRow)
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to insert packet: %v", err)
		}
		packetID, err = res.LastInsertId()
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to read new packet id: %v", err)
		}

		for _, nn := range normalizedNames {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO value(packet_id, name_normalized, kind, text, quoted, numeric_su) VALUES (?, ?, ?, NULL, 0, NULL)`,
				packetID, string(nn), unknownKind); err != nil {
				return cerrors.New(cerrors.EnvironmentError, "failed to seed packet value: %v", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return PacketHandle{}, txErr
	}
	return PacketHandle{id: packetID}, nil
}

// RemovePacket deletes one row of loop. If it was the loop's last packet,
// the loop itself is destroyed along with it (spec.md §4.1 "removing the
// last packet of a non-scalar loop destroys the loop"); the distinguished
// scalar loop is exempt and may sit empty.
func (s *Store) RemovePacket(ctx context.Context, loop LoopHandle, packet PacketHandle) error {
	if err := s.checkLoop(loop); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM packet WHERE id = ? AND loop_id = ?`, packet.id, loop.id); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to remove packet: %v", err)
		}

		var category string
		if err := tx.QueryRowContext(ctx, `SELECT category FROM loop WHERE id = ?`, loop.id).Scan(&category); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to resolve loop category: %v", err)
		}
		if category == scalarCategory {
			return nil
		}

		var remaining int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM packet WHERE loop_id = ?`, loop.id).Scan(&remaining); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to count remaining packets: %v", err)
		}
		if remaining == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM loop WHERE id = ?`, loop.id); err != nil {
				return cerrors.New(cerrors.EnvironmentError, "failed to destroy emptied loop: %v", err)
			}
		}
		return nil
	})
}

// PacketCursor iterates the packets of a loop in row order. It re-queries
// the current row's id on every Next so that a mutation made through
// another handle mid-iteration (e.g. RemovePacket on an earlier row) is
// observed rather than replayed from a stale snapshot (spec.md §4.1
// "iteration must tolerate concurrent packet mutation").
type PacketCursor struct {
	store   *Store
	loop    LoopHandle
	nextRow int64
	current PacketHandle
	done    bool
}

// Packets opens a cursor over loop's packets in row order.
func (s *Store) Packets(ctx context.Context, loop LoopHandle) (*PacketCursor, error) {
	if err := s.checkLoop(loop); err != nil {
		return nil, err
	}
	return &PacketCursor{store: s, loop: loop}, nil
}

// Next advances the cursor and reports whether a packet was found. It
// returns (false, nil) once exhausted.
func (c *PacketCursor) Next(ctx context.Context) (bool, error) {
	if c.done {
		return false, nil
	}
	var id int64
	err := c.store.db.QueryRowContext(ctx,
		`SELECT id FROM packet WHERE loop_id = ? AND row_number >= ? ORDER BY row_number LIMIT 1`,
		c.loop.id, c.nextRow).Scan(&id)
	if err == sql.ErrNoRows {
		c.done = true
		return false, nil
	}
	if err != nil {
		return false, cerrors.New(cerrors.EnvironmentError, "cursor advance failed: %v", err)
	}

	var row int64
	if err := c.store.db.QueryRowContext(ctx, `SELECT row_number FROM packet WHERE id = ?`, id).Scan(&row); err != nil {
		return false, cerrors.New(cerrors.EnvironmentError, "failed to read advanced row number: %v", err)
	}
	c.current = PacketHandle{id: id}
	c.nextRow = row + 1
	return true, nil
}

// Packet returns the handle most recently yielded by Next.
func (c *PacketCursor) Packet() PacketHandle { return c.current }

// Close releases the cursor. It holds no resources of its own but is
// provided for symmetry with callers that defer a Close unconditionally.
func (c *PacketCursor) Close() error { return nil }

// PacketValue returns the value stored for name in packet.
func (s *Store) PacketValue(ctx context.Context, packet PacketHandle, originalName string) (value.Value, error) {
	return s.getValue(ctx, packet.id, originalName)
}
