package plain

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Store file names inside the data directory.
const (
	BookmarksFile    = "bookmarks"
	HistoryFile      = "history"
	InputHistoryFile = "input-history"
)

// loadOptions make the ini parser read key files the way they are written:
// '=' is the only delimiter, ';' inside values is data rather than a comment,
// and a '.' in a document path does not make a group the child of another.
var loadOptions = ini.LoadOptions{
	KeyValueDelimiters:    "=",
	IgnoreInlineComment:   true,
	IgnoreContinuation:    true,
	ChildSectionDelimiter: "\x00",
}

func init() {
	// Write "key=value" without column alignment.
	ini.PrettyFormat = false
}

// parseKeyFile parses key-file content.
func parseKeyFile(data []byte) (*ini.File, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parsing key file: %w", err)
	}
	return f, nil
}

// serializeKeyFile renders f as key-file content.
func serializeKeyFile(f *ini.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serializing key file: %w", err)
	}
	return buf.Bytes(), nil
}

// cloneKeyFile returns an independent copy of f, so a mutation can be
// prepared and written before it replaces the cached store.
func cloneKeyFile(f *ini.File) (*ini.File, error) {
	data, err := serializeKeyFile(f)
	if err != nil {
		return nil, err
	}
	return parseKeyFile(data)
}

// readKeyFile loads the key file at path under a shared lock. A missing file
// is created empty.
func readKeyFile(path string) (*ini.File, error) {
	data, err := readLocked(path)
	if os.IsNotExist(err) {
		if err := writeLocked(path, nil); err != nil {
			return nil, err
		}
		return parseKeyFile(nil)
	}
	if err != nil {
		return nil, err
	}
	return parseKeyFile(data)
}

// documentSection returns the group of path, or nil when f has none.
func documentSection(f *ini.File, path string) *ini.Section {
	sec, err := f.GetSection(groupName(path))
	if err != nil {
		return nil
	}
	return sec
}
