package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// LoadJumplist returns the jumplist of path in insertion order.
func (b *Backend) LoadJumplist(path string) ([]types.Jump, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	rows, err := b.db.Query(
		`SELECT page, hadj_ratio, vadj_ratio FROM jumplist WHERE file = ? ORDER BY id ASC`,
		path,
	)
	if err != nil {
		b.log.Warn("sqlite: failed to load jumplist", "file", path, "err", err)
		return nil, fmt.Errorf("loading jumplist: %w", err)
	}
	defer rows.Close()

	jumps := []types.Jump{}
	for rows.Next() {
		var (
			page sql.NullInt64
			x, y sql.NullFloat64
		)
		if err := rows.Scan(&page, &x, &y); err != nil {
			b.log.Debug("sqlite: skipping malformed jump", "file", path, "err", err)
			continue
		}
		if !page.Valid || page.Int64 < 0 {
			continue
		}
		jumps = append(jumps, types.Jump{Page: uint(page.Int64), X: x.Float64, Y: y.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading jumplist: %w", err)
	}
	return jumps, nil
}

// SaveJumplist replaces the jumplist of path in one transaction. If any
// insert fails the transaction rolls back and the previous list survives.
func (b *Backend) SaveJumplist(path string, jumps []types.Jump) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	if err := b.saveJumplist(path, jumps); err != nil {
		b.log.Warn("sqlite: failed to save jumplist", "file", path, "jumps", len(jumps), "err", err)
		return err
	}
	return nil
}

func (b *Backend) saveJumplist(path string, jumps []types.Jump) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning jumplist transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM jumplist WHERE file = ?`, path); err != nil {
		return fmt.Errorf("clearing jumplist: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO jumplist (file, page, hadj_ratio, vadj_ratio) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing jumplist insert: %w", err)
	}
	defer stmt.Close()

	for i, j := range jumps {
		if _, err := stmt.Exec(path, int64(j.Page), j.X, j.Y); err != nil {
			return fmt.Errorf("inserting jump %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing jumplist: %w", err)
	}
	return nil
}
