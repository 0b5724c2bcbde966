package plain

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/mesh-intelligence/folio/pkg/types"
)

const keyJumplist = "jumplist"

// LoadJumplist decodes the document's jumplist from the history store.
func (b *Backend) LoadJumplist(path string) ([]types.Jump, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	sec := documentSection(b.stores[HistoryFile], path)
	if sec == nil || !sec.HasKey(keyJumplist) {
		return []types.Jump{}, nil
	}
	return decodeJumplist(sec.Key(keyJumplist).Value()), nil
}

// SaveJumplist replaces the document's jumplist. The new list is written in
// one store rewrite, so readers see either the old or the new list.
func (b *Backend) SaveJumplist(path string, jumps []types.Jump) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	err := b.update(HistoryFile, func(f *ini.File) error {
		sec, err := f.NewSection(groupName(path))
		if err != nil {
			return err
		}
		_, err = sec.NewKey(keyJumplist, encodeJumplist(jumps))
		return err
	})
	if err != nil {
		b.log.Warn("plain: failed to save jumplist", "file", path, "jumps", len(jumps), "err", err)
		return fmt.Errorf("saving jumplist: %w", err)
	}
	return nil
}
