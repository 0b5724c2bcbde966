package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// timeLayout matches SQLite's DATETIME('now') so rows written by older
// versions and rows written here compare in chronological order.
const timeLayout = "2006-01-02 15:04:05"

// formatTime renders t for the time columns.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime decodes a time column value. The driver hands back text, a
// time.Time for TIMESTAMP columns, or a number for databases that stored
// unix seconds.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case int64:
		return time.Unix(t, 0).UTC(), true
	case float64:
		return time.Unix(int64(t), 0).UTC(), true
	case []byte:
		return parseTime(string(t))
	case string:
		if ts, err := time.ParseInLocation(timeLayout, t, time.UTC); err == nil {
			return ts, true
		}
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts, true
		}
		if secs, err := strconv.ParseInt(t, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
	}
	return time.Time{}, false
}

// SetFileInfo stores info for path with the current time as access time,
// replacing any existing row.
func (b *Backend) SetFileInfo(path string, info types.FileInfo) error {
	return b.SetFileInfoAt(path, info, time.Time{})
}

// SetFileInfoAt stores info for path with at as access time. A zero at means
// now.
func (b *Backend) SetFileInfoAt(path string, info types.FileInfo, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	if at.IsZero() {
		at = time.Now()
	}
	info.AccessTime = at
	_, err := b.db.Exec(
		`REPLACE INTO fileinfo (`+fileinfoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path,
		int64(info.CurrentPage),
		int64(info.PageOffset),
		info.Zoom,
		int64(info.Rotation),
		int64(info.PagesPerRow),
		info.FirstPageColumns,
		info.PositionX,
		info.PositionY,
		formatTime(info.AccessTime),
	)
	if err != nil {
		b.log.Warn("sqlite: failed to set file info", "file", path, "err", err)
		return fmt.Errorf("setting file info: %w", err)
	}
	return nil
}

// GetFileInfo returns the stored view state of path. Columns that are NULL,
// as they are in rows written before the column existed, keep the values of
// types.DefaultFileInfo.
func (b *Backend) GetFileInfo(path string) (types.FileInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return types.FileInfo{}, types.ErrStoreClosed
	}

	var (
		page, offset, rotation, perRow sql.NullInt64
		scale, posX, posY              sql.NullFloat64
		firstColumn                    sql.NullString
		accessed                       any
	)
	err := b.db.QueryRow(
		`SELECT page, offset, scale, rotation, pages_per_row, first_page_column, position_x, position_y, time
		 FROM fileinfo WHERE file = ?`,
		path,
	).Scan(&page, &offset, &scale, &rotation, &perRow, &firstColumn, &posX, &posY, &accessed)
	if errors.Is(err, sql.ErrNoRows) {
		return types.FileInfo{}, types.ErrNotFound
	}
	if err != nil {
		b.log.Warn("sqlite: failed to get file info", "file", path, "err", err)
		return types.FileInfo{}, fmt.Errorf("getting file info: %w", err)
	}

	info := types.DefaultFileInfo()
	if page.Valid && page.Int64 >= 0 {
		info.CurrentPage = uint(page.Int64)
	}
	if offset.Valid && offset.Int64 >= 0 {
		info.PageOffset = uint(offset.Int64)
	}
	if scale.Valid {
		info.Zoom = scale.Float64
	}
	if rotation.Valid && rotation.Int64 >= 0 {
		info.Rotation = uint(rotation.Int64)
	}
	if perRow.Valid && perRow.Int64 >= 0 {
		info.PagesPerRow = uint(perRow.Int64)
	}
	if firstColumn.Valid {
		info.FirstPageColumns = firstColumn.String
	}
	if posX.Valid {
		info.PositionX = posX.Float64
	}
	if posY.Valid {
		info.PositionY = posY.Float64
	}
	if ts, ok := parseTime(accessed); ok {
		info.AccessTime = ts
	}
	return info, nil
}

// RecentFiles returns the paths with stored file info ordered by access time,
// newest first. The prefix comparison uses substr rather than LIKE so that
// '%' and '_' in paths match literally.
func (b *Backend) RecentFiles(limit int, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	n := int64(limit)
	if limit < 0 {
		n = -1
	}

	rows, err := b.db.Query(
		`SELECT file FROM fileinfo
		 WHERE ? = '' OR substr(file, 1, length(?)) = ?
		 ORDER BY time DESC, rowid DESC
		 LIMIT ?`,
		prefix, prefix, prefix, n,
	)
	if err != nil {
		b.log.Warn("sqlite: failed to list recent files", "err", err)
		return nil, fmt.Errorf("listing recent files: %w", err)
	}
	defer rows.Close()

	files := []string{}
	for rows.Next() {
		var file sql.NullString
		if err := rows.Scan(&file); err != nil || !file.Valid {
			continue
		}
		files = append(files, file.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing recent files: %w", err)
	}
	return files, nil
}
