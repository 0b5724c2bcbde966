package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// AppendHistory records line as the newest history entry. The line's primary
// key makes REPLACE move an existing entry to the end.
func (b *Backend) AppendHistory(line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	if !types.IsHistoryLine(line) {
		b.log.Debug("sqlite: ignoring history line without command prefix")
		return nil
	}

	if _, err := b.db.Exec(
		`REPLACE INTO history (line, time) VALUES (?, ?)`,
		line, formatTime(time.Now()),
	); err != nil {
		b.log.Warn("sqlite: failed to append history", "err", err)
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// ReadHistory returns the history oldest first. Rows inserted in the same
// second keep their insertion order through rowid.
func (b *Backend) ReadHistory() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	rows, err := b.db.Query(`SELECT line FROM history ORDER BY time ASC, rowid ASC`)
	if err != nil {
		b.log.Warn("sqlite: failed to read history", "err", err)
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var line sql.NullString
		if err := rows.Scan(&line); err != nil || !line.Valid {
			continue
		}
		if types.IsHistoryLine(line.String) {
			lines = append(lines, line.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return lines, nil
}
