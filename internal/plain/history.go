package plain

import (
	"fmt"
	"os"
	"strings"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// AppendHistory moves line to the end of the input history file. The file
// is read, stripped of the line, of duplicates and of lines without a command
// prefix, and rewritten with line last, all under one exclusive lock.
func (b *Backend) AppendHistory(line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	if !types.IsHistoryLine(line) {
		b.log.Debug("plain: ignoring history line without command prefix")
		return nil
	}

	err := rewriteLocked(b.filePath(InputHistoryFile), func(old []byte) []byte {
		var sb strings.Builder
		for _, l := range types.DedupHistory(strings.Split(string(old), "\n")) {
			if l == line {
				continue
			}
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
		return []byte(sb.String())
	})
	if err != nil {
		b.log.Warn("plain: failed to append history", "err", err)
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// ReadHistory returns the input history oldest first. A missing file is an
// empty history.
func (b *Backend) ReadHistory() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	data, err := readLocked(b.filePath(InputHistoryFile))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		b.log.Warn("plain: failed to read history", "err", err)
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return types.DedupHistory(strings.Split(string(data), "\n")), nil
}
