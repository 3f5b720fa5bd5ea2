package store

import (
	"context"
	"database/sql"
	"errors"

	cerrors "github.com/ciftools/linguist/errors"
	"github.com/ciftools/linguist/name"
)

const topLevelScope = 0

// CreateBlock creates a new data block with the given original code. It
// fails with DuplicateCode if a block with the same normalized code
// already exists (spec.md §3 "block codes unique within the CIF"), or
// with InvalidBlockcode if the code fails normalization.
func (s *Store) CreateBlock(ctx context.Context, originalCode string) (ContainerHandle, error) {
	return s.createContainer(ctx, nil, originalCode, cerrors.InvalidBlockcode)
}

// CreateFrame creates a new save frame within parent. It fails with
// DuplicateCode if a frame with the same normalized code already exists
// within parent (spec.md §3 "frame codes unique within their parent
// block"), or with InvalidFramecode if the code fails normalization.
func (s *Store) CreateFrame(ctx context.Context, parent ContainerHandle, originalCode string) (ContainerHandle, error) {
	if err := s.checkContainer(parent); err != nil {
		return ContainerHandle{}, err
	}
	return s.createContainer(ctx, &parent, originalCode, cerrors.InvalidFramecode)
}

func (s *Store) createContainer(ctx context.Context, parent *ContainerHandle, originalCode string, invalidKind cerrors.Kind) (ContainerHandle, error) {
	normalized, err := name.Normalize(originalCode, invalidKind)
	if err != nil {
		return ContainerHandle{}, err
	}

	scope := int64(topLevelScope)
	var parentID sql.NullInt64
	if parent != nil {
		scope = parent.id
		parentID = sql.NullInt64{Int64: parent.id, Valid: true}
	}

	var newID int64
	txErr := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO container(parent_id) VALUES (?)`, parentID)
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to insert container: %v", err)
		}
		newID, err = res.LastInsertId()
		if err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to read new container id: %v", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO container_code(container_id, scope_id, code_normalized, code_original) VALUES (?, ?, ?, ?)`,
			newID, scope, string(normalized), originalCode)
		if err != nil {
			if isUniqueConstraint(err) {
				return cerrors.New(cerrors.DuplicateCode, "code %q already exists in this scope", originalCode)
			}
			return cerrors.New(cerrors.EnvironmentError, "failed to insert container code: %v", err)
		}
		return nil
	})
	if txErr != nil {
		return ContainerHandle{}, txErr
	}
	return ContainerHandle{generation: s.generation, id: newID}, nil
}

// GetBlock looks up a block by original or normalized spelling; either
// resolves to the same normalized form. Fails with NoSuchBlock if absent.
func (s *Store) GetBlock(ctx context.Context, code string) (ContainerHandle, error) {
	normalized, err := name.Normalize(code, cerrors.InvalidBlockcode)
	if err != nil {
		return ContainerHandle{}, err
	}
	return s.getContainer(ctx, topLevelScope, normalized, cerrors.NoSuchBlock)
}

// GetFrame looks up a save frame within parent. Fails with NoSuchFrame if
// absent.
func (s *Store) GetFrame(ctx context.Context, parent ContainerHandle, code string) (ContainerHandle, error) {
	if err := s.checkContainer(parent); err != nil {
		return ContainerHandle{}, err
	}
	normalized, err := name.Normalize(code, cerrors.InvalidFramecode)
	if err != nil {
		return ContainerHandle{}, err
	}
	return s.getContainer(ctx, parent.id, normalized, cerrors.NoSuchFrame)
}

func (s *Store) getContainer(ctx context.Context, scope int64, normalized name.Normalized, notFoundKind cerrors.Kind) (ContainerHandle, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT container_id FROM container_code WHERE scope_id = ? AND code_normalized = ?`,
		scope, string(normalized)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ContainerHandle{}, cerrors.New(notFoundKind, "no container with normalized code %q", normalized)
	}
	if err != nil {
		return ContainerHandle{}, cerrors.New(cerrors.EnvironmentError, "lookup failed: %v", err)
	}
	return ContainerHandle{generation: s.generation, id: id}, nil
}

// EnumerateBlocks returns every top-level block's handle and original
// code, in insertion order (spec.md §5 "Ordering guarantees").
func (s *Store) EnumerateBlocks(ctx context.Context) ([]ContainerHandle, []string, error) {
	return s.enumerateContainers(ctx, topLevelScope)
}

// EnumerateFrames returns every save frame's handle and original code
// within parent, in insertion order.
func (s *Store) EnumerateFrames(ctx context.Context, parent ContainerHandle) ([]ContainerHandle, []string, error) {
	if err := s.checkContainer(parent); err != nil {
		return nil, nil, err
	}
	return s.enumerateContainers(ctx, parent.id)
}

func (s *Store) enumerateContainers(ctx context.Context, scope int64) ([]ContainerHandle, []string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT container_id, code_original FROM container_code WHERE scope_id = ? ORDER BY container_id`, scope)
	if err != nil {
		return nil, nil, cerrors.New(cerrors.EnvironmentError, "enumeration failed: %v", err)
	}
	defer rows.Close()

	var handles []ContainerHandle
	var codes []string
	for rows.Next() {
		var id int64
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, nil, cerrors.New(cerrors.EnvironmentError, "enumeration scan failed: %v", err)
		}
		handles = append(handles, ContainerHandle{generation: s.generation, id: id})
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, cerrors.New(cerrors.EnvironmentError, "enumeration iteration failed: %v", err)
	}
	return handles, codes, nil
}

// DestroyContainer removes h and, for a block, every save frame nested in
// it, cascading to all of its loops, packets, and values (spec.md §4.1
// "Destroy container"). The cascade is the database's own ON DELETE
// CASCADE, not hand-rolled traversal.
func (s *Store) DestroyContainer(ctx context.Context, h ContainerHandle) error {
	if err := s.checkContainer(h); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM container WHERE id = ?`, h.id); err != nil {
			return cerrors.New(cerrors.EnvironmentError, "failed to destroy container: %v", err)
		}
		return nil
	})
}

func isUniqueConstraint(err error) bool {
	// modernc.org/sqlite reports constraint violations with "UNIQUE
	// constraint failed" in the error text; there is no portable typed
	// error across the engines this store could target, so this is a
	// text match the way the teacher's mssql/pgx error-kind switches
	// (dbops.go) key off driver-specific sentinel types instead.
	return err != nil && containsFold(err.Error(), "unique constraint")
}

func containsFold(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexFold(haystack, needle) >= 0
}

func indexFold(haystack, needle string) int {
	hl, nl := len(haystack), len(needle)
	for i := 0; i+nl <= hl; i++ {
		if equalFold(haystack[i:i+nl], needle) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
