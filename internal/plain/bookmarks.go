package plain

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// AddBookmark stores b under its ID in the document's bookmarks group,
// replacing a bookmark with the same ID.
func (b *Backend) AddBookmark(path string, bm types.Bookmark) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	err := b.update(BookmarksFile, func(f *ini.File) error {
		sec, err := f.NewSection(groupName(path))
		if err != nil {
			return err
		}
		_, err = sec.NewKey(bookmarkKey(bm.ID), encodeBookmark(bm))
		return err
	})
	if err != nil {
		b.log.Warn("plain: failed to add bookmark", "file", path, "id", bm.ID, "err", err)
		return fmt.Errorf("adding bookmark %q: %w", bm.ID, err)
	}
	return nil
}

// RemoveBookmark deletes the bookmark with the given id. A document group
// left without bookmarks is removed too.
func (b *Backend) RemoveBookmark(path, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	key := bookmarkKey(id)
	sec := documentSection(b.stores[BookmarksFile], path)
	if sec == nil || !sec.HasKey(key) {
		return types.ErrNotFound
	}

	err := b.update(BookmarksFile, func(f *ini.File) error {
		group := groupName(path)
		sec, err := f.GetSection(group)
		if err != nil {
			return err
		}
		sec.DeleteKey(key)
		if len(sec.Keys()) == 0 {
			f.DeleteSection(group)
		}
		return nil
	})
	if err != nil {
		b.log.Warn("plain: failed to remove bookmark", "file", path, "id", id, "err", err)
		return fmt.Errorf("removing bookmark %q: %w", id, err)
	}
	return nil
}

// LoadBookmarks decodes the document's bookmarks group. Values that do not
// decode are skipped.
func (b *Backend) LoadBookmarks(path string) ([]types.Bookmark, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	bookmarks := []types.Bookmark{}
	sec := documentSection(b.stores[BookmarksFile], path)
	if sec == nil {
		return bookmarks, nil
	}
	for _, key := range sec.Keys() {
		id := bookmarkID(key.Name())
		bm, ok := decodeBookmark(id, key.Value())
		if !ok {
			b.log.Debug("plain: skipping malformed bookmark", "file", path, "id", id)
			continue
		}
		bookmarks = append(bookmarks, bm)
	}
	return bookmarks, nil
}
