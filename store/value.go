package store

import (
	"context"
	"database/sql"
	"errors"

	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/name"
	"github.com/ciftools/linguist/value"
)

// SetValue overwrites the value for originalName in packet (spec.md §4.1
// "set value"). It never creates a row: the value row must already exist,
// as AppendPacket and AddLoopItem seed one for every declared item name;
// a missing row (an undeclared name, or one removed by RemoveValue) fails
// with NoSuchItem.
func (s *Store) SetValue(ctx context.Context, packet PacketHandle, originalName string, v value.Value) error {
	normalized, err := name.Normalize(originalName, cerrors.InvalidItemname)
	if err != nil {
		return err
	}
	kindCode, err := kindToStorage(v.Kind())
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		lookup, err := s.preparedTx(ctx, tx, "value_id_by_packet_name",
			`SELECT id FROM value WHERE packet_id = ? AND name_normalized = ?`)
		if err != nil {
			return err
		}
		var existingID int64
		err = lookup.QueryRowContext(ctx, packet.id, string(normalized)).Scan(&existingID)
		if errors.Is(err, sql.ErrNoRows) {
			return cerrors.New(cerrors.NoSuchItem, "no item named %q declared on this packet's loop", originalName)
		}
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to resolve value row: %v", err)
		}

		if err := clearChildren(ctx, tx, existingID); err != nil {
			return err
		}

		text, quoted, su := flattenScalar(v)
		update, err := s.preparedTx(ctx, tx, "update_value",
			`UPDATE value SET kind = ?, text = ?, quoted = ?, numeric_su = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		if _, err := update.ExecContext(ctx, kindCode, text, quoted, su, existingID); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to update value: %v", err)
		}

		if err := insertChildren(ctx, tx, existingID, v); err != nil {
			return err
		}
		return nil
	})
}

// getValue reads the value stored for originalName under packetID.
func (s *Store) getValue(ctx context.Context, packetID int64, originalName string) (value.Value, error) {
	normalized, err := name.Normalize(originalName, cerrors.InvalidItemname)
	if err != nil {
		return value.Value{}, err
	}
	lookup, err := s.prepared(ctx, "value_id_by_packet_name",
		`SELECT id FROM value WHERE packet_id = ? AND name_normalized = ?`)
	if err != nil {
		return value.Value{}, err
	}
	var id int64
	err = lookup.QueryRowContext(ctx, packetID, string(normalized)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return value.Value{}, cerrors.New(cerrors.NoSuchItem, "no item named %q on this packet", originalName)
	}
	if err != nil {
		return value.Value{}, cerrors.New(cerrors.EnvironmentError, "failed to look up value: %v", err)
	}
	return s.loadValue(ctx, id)
}

func (s *Store) loadValue(ctx context.Context, valueID int64) (value.Value, error) {
	stmt, err := s.prepared(ctx, "load_value", `SELECT kind, text, quoted, numeric_su FROM value WHERE id = ?`)
	if err != nil {
		return value.Value{}, err
	}
	var kindCode int
	var text sql.NullString
	var quoted bool
	var su sql.NullString
	if err := stmt.QueryRowContext(ctx, valueID).
		Scan(&kindCode, &text, &quoted, &su); err != nil {
		return value.Value{}, cerrors.New(cerrors.EnvironmentError, "failed to load value row: %v", err)
	}
	kind, err := storageToKind(kindCode)
	if err != nil {
		return value.Value{}, err
	}

	switch kind {
	case value.Unknown:
		return value.NewUnknown(), nil
	case value.NotApplicable:
		return value.NewNotApplicable(), nil
	case value.Character:
		return value.NewCharacter(text.String, quoted), nil
	case value.Number:
		meta, err := parseNumericMetadata(text.String, su.String)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewNumber(text.String, meta), nil
	case value.List:
		children, err := s.loadChildren(ctx, valueID)
		if err != nil {
			return value.Value{}, err
		}
		elements := make([]value.Value, len(children))
		for i, c := range children {
			elements[i] = c.value
		}
		return value.NewList(elements), nil
	case value.Table:
		children, err := s.loadChildren(ctx, valueID)
		if err != nil {
			return value.Value{}, err
		}
		entries := make([]value.TableEntry, len(children))
		for i, c := range children {
			entries[i] = value.TableEntry{
				KeyNormalized: name.Normalized(c.keyNormalized),
				KeyOriginal:   c.keyOriginal,
				Value:         c.value,
			}
		}
		return value.NewTable(entries), nil
	default:
		return value.Value{}, cerrors.New(cerrors.InternalError, "unhandled kind %v", kind)
	}
}

type loadedChild struct {
	keyNormalized string
	keyOriginal   string
	value         value.Value
}

func (s *Store) loadChildren(ctx context.Context, parentValueID int64) ([]loadedChild, error) {
	stmt, err := s.prepared(ctx, "load_children",
		`SELECT key_normalized, key_original, child_value_id FROM child_value WHERE parent_value_id = ? ORDER BY position`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, parentValueID)
	if err != nil {
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to load child values: %v", err)
	}
	defer rows.Close()

	var out []loadedChild
	var childIDs []int64
	var keysN, keysO []sql.NullString
	for rows.Next() {
		var kn, ko sql.NullString
		var childID int64
		if err := rows.Scan(&kn, &ko, &childID); err != nil {
			return nil, cerrors.New(cerrors.EnvironmentError, "failed to scan child value: %v", err)
		}
		childIDs = append(childIDs, childID)
		keysN = append(keysN, kn)
		keysO = append(keysO, ko)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.New(cerrors.EnvironmentError, "failed to iterate child values: %v", err)
	}

	for i, childID := range childIDs {
		v, err := s.loadValue(ctx, childID)
		if err != nil {
			return nil, err
		}
		out = append(out, loadedChild{keyNormalized: keysN[i].String, keyOriginal: keysO[i].String, value: v})
	}
	return out, nil
}

// RemoveValue deletes the value row for originalName in packet. If the
// packet's loop is the scalar loop and this was its last item, the
// container's scalar loop is left in place but empty; RemovePacket, not
// RemoveValue, is responsible for the "last packet destroys loop" rule.
func (s *Store) RemoveValue(ctx context.Context, packet PacketHandle, originalName string) error {
	normalized, err := name.Normalize(originalName, cerrors.InvalidItemname)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM value WHERE packet_id = ? AND name_normalized = ?`, packet.id, string(normalized))
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to remove value: %v", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to confirm value removal: %v", err)
		}
		if n == 0 {
			return cerrors.New(cerrors.NoSuchItem, "no item named %q on this packet", originalName)
		}
		return nil
	})
}

func clearChildren(ctx context.Context, tx *sql.Tx, parentValueID int64) error {
	rows, err := tx.QueryContext(ctx, `SELECT child_value_id FROM child_value WHERE parent_value_id = ?`, parentValueID)
	if err != nil {
		return cerrors.New(cerrors.EnvironmentError, "failed to enumerate old children: %v", err)
	}
	var childIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return cerrors.New(cerrors.EnvironmentError, "failed to scan old child: %v", err)
		}
		childIDs = append(childIDs, id)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM child_value WHERE parent_value_id = ?`, parentValueID); err != nil {
		return cerrors.New(cerrors.EnvironmentError, "failed to clear child links: %v", err)
	}
	for _, id := range childIDs {
		if err := clearChildren(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM value WHERE id = ?`, id); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to delete old child value: %v", err)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, parentValueID int64, v value.Value) error {
	switch v.Kind() {
	case value.List:
		elements, _ := v.Elements()
		for i, el := range elements {
			childID, err := insertDetachedValue(ctx, tx, el)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO child_value(parent_value_id, position, key_normalized, key_original, child_value_id) VALUES (?, ?, NULL, NULL, ?)`,
				parentValueID, i, childID); err != nil {
				return cerrors.New(cerrors.EnvironmentError, "failed to link list element: %v", err)
			}
		}
	case value.Table:
		entries, _ := v.Entries()
		for i, entry := range entries {
			childID, err := insertDetachedValue(ctx, tx, entry.Value)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO child_value(parent_value_id, position, key_normalized, key_original, child_value_id) VALUES (?, ?, ?, ?, ?)`,
				parentValueID, i, string(entry.KeyNormalized), entry.KeyOriginal, childID); err != nil {
				return cerrors.New(cerrors.EnvironmentError, "failed to link table entry: %v", err)
			}
		}
	}
	return nil
}

// insertDetachedValue inserts a value row with no owning packet, for use
// as a List/Table child (schema.go: packet_id and name_normalized are
// NULL for anything but a top-level value).
func insertDetachedValue(ctx context.Context, tx *sql.Tx, v value.Value) (int64, error) {
	kindCode, err := kindToStorage(v.Kind())
	if err != nil {
		return 0, err
	}
	text, quoted, su := flattenScalar(v)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO value(packet_id, name_normalized, kind, text, quoted, numeric_su) VALUES (NULL, NULL, ?, ?, ?, ?)`,
		kindCode, text, quoted, su)
	if err != nil {
		return 0, cerrors.New(cerrors.EnvironmentError, "failed to insert child value: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, cerrors.New(cerrors.EnvironmentError, "failed to read child value id: %v", err)
	}
	if err := insertChildren(ctx, tx, id, v); err != nil {
		return 0, err
	}
	return id, nil
}

func flattenScalar(v value.Value) (text sql.NullString, quoted bool, su sql.NullString) {
	if t, ok := v.Text(); ok {
		text = sql.NullString{String: t, Valid: true}
	}
	quoted = v.Quoted()
	if meta, ok := v.Numeric(); ok && meta.SU != "" {
		su = sql.NullString{String: meta.SU, Valid: true}
	}
	return text, quoted, su
}

func parseNumericMetadata(text, su string) (value.NumericMetadata, error) {
	if suffix := "(" + su + ")"; su != "" && len(text) > len(suffix) && text[len(text)-len(suffix):] == suffix {
		text = text[:len(text)-len(suffix)]
	}
	meta, err := decimalMetadata(text)
	if err != nil {
		return value.NumericMetadata{}, err
	}
	meta.SU = su
	return meta, nil
}
