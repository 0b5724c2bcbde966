package plain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// File info keys in a document's history group. The first four exist in
// every store; the rest were added later and may be missing.
const (
	keyPage            = "page"
	keyOffset          = "offset"
	keyZoom            = "zoom"
	keyRotate          = "rotate"
	keyPagesPerRow     = "pages-per-row"
	keyFirstPageColumn = "first-page-column"
	keyPositionX       = "position-x"
	keyPositionY       = "position-y"
	keyTime            = "time"
)

// SetFileInfo writes every file info key of the document's history group
// with the current time as access time.
func (b *Backend) SetFileInfo(path string, info types.FileInfo) error {
	return b.SetFileInfoAt(path, info, time.Time{})
}

// SetFileInfoAt writes the document's file info with at as access time. A
// zero at means now. The group is moved to the end of the history file, so
// among equal access times the latest save lists first in RecentFiles. Other
// keys of the group, such as the jumplist, are kept.
func (b *Backend) SetFileInfoAt(path string, info types.FileInfo, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	if at.IsZero() {
		at = time.Now()
	}
	values := [][2]string{
		{keyPage, strconv.FormatUint(uint64(info.CurrentPage), 10)},
		{keyOffset, strconv.FormatUint(uint64(info.PageOffset), 10)},
		{keyZoom, formatFloat(info.Zoom)},
		{keyRotate, strconv.FormatUint(uint64(info.Rotation), 10)},
		{keyPagesPerRow, strconv.FormatUint(uint64(info.PagesPerRow), 10)},
		{keyFirstPageColumn, info.FirstPageColumns},
		{keyPositionX, formatFloat(info.PositionX)},
		{keyPositionY, formatFloat(info.PositionY)},
		{keyTime, strconv.FormatInt(at.Unix(), 10)},
	}

	err := b.update(HistoryFile, func(f *ini.File) error {
		group := groupName(path)
		var kept [][2]string
		if old, err := f.GetSection(group); err == nil {
			for _, key := range old.Keys() {
				if !slices.ContainsFunc(values, func(kv [2]string) bool { return kv[0] == key.Name() }) {
					kept = append(kept, [2]string{key.Name(), key.Value()})
				}
			}
			f.DeleteSection(group)
		}
		sec, err := f.NewSection(group)
		if err != nil {
			return err
		}
		for _, kv := range append(kept, values...) {
			if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.log.Warn("plain: failed to set file info", "file", path, "err", err)
		return fmt.Errorf("setting file info: %w", err)
	}
	return nil
}

// GetFileInfo reads the document's view state. A group without a page key
// holds no file info. Missing or unparsable keys keep the values of
// types.DefaultFileInfo.
func (b *Backend) GetFileInfo(path string) (types.FileInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.FileInfo{}, types.ErrStoreClosed
	}

	sec := documentSection(b.stores[HistoryFile], path)
	if sec == nil || !sec.HasKey(keyPage) {
		return types.FileInfo{}, types.ErrNotFound
	}

	info := types.DefaultFileInfo()
	readUint(sec, keyPage, &info.CurrentPage)
	readUint(sec, keyOffset, &info.PageOffset)
	readFloat(sec, keyZoom, &info.Zoom)
	readUint(sec, keyRotate, &info.Rotation)
	readUint(sec, keyPagesPerRow, &info.PagesPerRow)
	if sec.HasKey(keyFirstPageColumn) {
		info.FirstPageColumns = sec.Key(keyFirstPageColumn).Value()
	}
	readFloat(sec, keyPositionX, &info.PositionX)
	readFloat(sec, keyPositionY, &info.PositionY)
	if ts, ok := accessTime(sec); ok {
		info.AccessTime = ts
	}
	return info, nil
}

func readUint(sec *ini.Section, key string, dst *uint) {
	if !sec.HasKey(key) {
		return
	}
	if v, err := strconv.ParseUint(strings.TrimSpace(sec.Key(key).Value()), 10, 0); err == nil {
		*dst = uint(v)
	}
}

func readFloat(sec *ini.Section, key string, dst *float64) {
	if !sec.HasKey(key) {
		return
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(sec.Key(key).Value()), 64); err == nil {
		*dst = v
	}
}

func accessTime(sec *ini.Section) (time.Time, bool) {
	if !sec.HasKey(keyTime) {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(sec.Key(keyTime).Value()), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

// RecentFiles lists documents with file info, newest access first. Equal
// times list the group saved last first. Groups without a time key sort last.
func (b *Backend) RecentFiles(limit int, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, types.ErrStoreClosed
	}

	type entry struct {
		path  string
		time  int64
		index int
	}
	var entries []entry
	for i, sec := range b.stores[HistoryFile].Sections() {
		if sec.Name() == ini.DefaultSection || !sec.HasKey(keyPage) {
			continue
		}
		path := pathFromGroup(sec.Name())
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		e := entry{path: path, index: i}
		if ts, ok := accessTime(sec); ok {
			e.time = ts.Unix()
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(x, y entry) int {
		return cmp.Or(cmp.Compare(y.time, x.time), cmp.Compare(y.index, x.index))
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.path)
	}
	return files, nil
}
