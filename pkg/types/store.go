package types

import (
	"errors"
	"time"
)

// Store is the persistence interface every backend implements. All operations
// are keyed by an absolute document path which the store uses verbatim; path
// canonicalization is the caller's responsibility.
//
// Every call blocks until the backend has finished. A failed call never leaves
// an earlier successful write half-applied, but separate calls are not
// composed into transactions.
type Store interface {
	// AddBookmark inserts the bookmark, or replaces the one with the same ID.
	AddBookmark(path string, b Bookmark) error

	// RemoveBookmark deletes the bookmark with the given ID.
	// Returns ErrNotFound if the document has no such bookmark.
	RemoveBookmark(path, id string) error

	// LoadBookmarks returns the document's bookmarks. An unknown document
	// yields an empty slice. Malformed stored records are skipped.
	LoadBookmarks(path string) ([]Bookmark, error)

	// LoadJumplist returns the document's jumplist in stored order.
	LoadJumplist(path string) ([]Jump, error)

	// SaveJumplist replaces the document's whole jumplist. Either the full
	// replacement is stored or the previous list is left unchanged.
	SaveJumplist(path string, jumps []Jump) error

	// SetFileInfo stores the document's view state, replacing any previous one.
	// The record's access time is set to the current time; info.AccessTime is
	// ignored.
	SetFileInfo(path string, info FileInfo) error

	// GetFileInfo returns the document's view state.
	// Returns ErrNotFound if none was stored.
	GetFileInfo(path string) (FileInfo, error)

	// RecentFiles returns document paths with stored view state, most recently
	// accessed first. When prefix is non-empty only paths starting with it are
	// considered. At most limit paths are returned; a negative limit means no
	// bound.
	RecentFiles(limit int, prefix string) ([]string, error)

	// AppendHistory adds line to the end of the input history, removing any
	// earlier copy. Lines not starting with ':', '/' or '?' are not kept.
	AppendHistory(line string) error

	// ReadHistory returns the input history from oldest to newest.
	ReadHistory() ([]string, error)

	// Close releases the backend's resources. Close is idempotent. Backends
	// that hold files or a database return ErrStoreClosed from later calls.
	Close() error
}

// FileInfoAtSetter is implemented by stores that can record view state with a
// given access time. Copying state between stores uses it to keep the order
// of the recent files list.
type FileInfoAtSetter interface {
	// SetFileInfoAt behaves like SetFileInfo but records at as the access
	// time. A zero at means the current time.
	SetFileInfoAt(path string, info FileInfo, at time.Time) error
}

// Store errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrStoreClosed = errors.New("store is closed")
)
