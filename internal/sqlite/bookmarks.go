package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// AddBookmark inserts or replaces the bookmark with b.ID for path.
func (b *Backend) AddBookmark(path string, bm types.Bookmark) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	_, err := b.db.Exec(
		`REPLACE INTO bookmarks (file, id, page, hadj_ratio, vadj_ratio) VALUES (?, ?, ?, ?, ?)`,
		path, bm.ID, int64(bm.Page), nullableCoord(bm.X), nullableCoord(bm.Y),
	)
	if err != nil {
		b.log.Warn("sqlite: failed to add bookmark", "file", path, "id", bm.ID, "err", err)
		return fmt.Errorf("adding bookmark %q: %w", bm.ID, err)
	}
	return nil
}

// RemoveBookmark deletes the bookmark with the given id.
// Returns ErrNotFound if no row matched.
func (b *Backend) RemoveBookmark(path, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	res, err := b.db.Exec(`DELETE FROM bookmarks WHERE file = ? AND id = ?`, path, id)
	if err != nil {
		b.log.Warn("sqlite: failed to remove bookmark", "file", path, "id", id, "err", err)
		return fmt.Errorf("removing bookmark %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing bookmark %q: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// LoadBookmarks returns the bookmarks of path. Rows that do not decode are
// skipped.
func (b *Backend) LoadBookmarks(path string) ([]types.Bookmark, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	rows, err := b.db.Query(
		`SELECT id, page, hadj_ratio, vadj_ratio FROM bookmarks WHERE file = ? ORDER BY rowid`,
		path,
	)
	if err != nil {
		b.log.Warn("sqlite: failed to load bookmarks", "file", path, "err", err)
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []types.Bookmark{}
	for rows.Next() {
		var (
			id   sql.NullString
			page sql.NullInt64
			x, y sql.NullFloat64
		)
		if err := rows.Scan(&id, &page, &x, &y); err != nil {
			b.log.Debug("sqlite: skipping malformed bookmark", "file", path, "err", err)
			continue
		}
		if !id.Valid || !page.Valid || page.Int64 < 0 {
			b.log.Debug("sqlite: skipping incomplete bookmark", "file", path)
			continue
		}
		bookmarks = append(bookmarks, types.Bookmark{
			ID:   id.String,
			Page: uint(page.Int64),
			X:    loadedCoord(x),
			Y:    loadedCoord(y),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}
	return bookmarks, nil
}
