// Package null implements a Store that keeps nothing. It lets the viewer run
// with persistence disabled without special-casing call sites.
package null

import "github.com/mesh-intelligence/folio/pkg/types"

// Backend discards every write and answers every read with the empty value.
type Backend struct{}

var _ types.Store = (*Backend)(nil)

// New returns a null backend. It cannot fail.
func New() *Backend {
	return &Backend{}
}

func (*Backend) AddBookmark(string, types.Bookmark) error { return nil }

func (*Backend) RemoveBookmark(string, string) error { return nil }

func (*Backend) LoadBookmarks(string) ([]types.Bookmark, error) {
	return []types.Bookmark{}, nil
}

func (*Backend) LoadJumplist(string) ([]types.Jump, error) {
	return []types.Jump{}, nil
}

func (*Backend) SaveJumplist(string, []types.Jump) error { return nil }

func (*Backend) SetFileInfo(string, types.FileInfo) error { return nil }

func (*Backend) GetFileInfo(string) (types.FileInfo, error) {
	return types.FileInfo{}, types.ErrNotFound
}

func (*Backend) RecentFiles(int, string) ([]string, error) {
	return []string{}, nil
}

func (*Backend) AppendHistory(string) error { return nil }

func (*Backend) ReadHistory() ([]string, error) {
	return []string{}, nil
}

func (*Backend) Close() error { return nil }
