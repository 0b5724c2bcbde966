// Tests for the flat-file backend: store files, cached reads, change
// detection, and the last-write-wins behavior of concurrent writers.
package plain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/folio/pkg/types"
)

const doc = "/home/reader/papers/paper.pdf"

// noReload is a settle delay long enough that change events never reload
// within a test; tests that need fresh state call Reload.
const noReload = time.Hour

func openTestBackend(t *testing.T, dir string, settle time.Duration) *Backend {
	t.Helper()
	b, err := Open(dir, settle)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestOpen_CreatesStoreFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	openTestBackend(t, dir, noReload)

	for _, name := range []string{BookmarksFile, HistoryFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Zero(t, info.Size(), name)
	}
}

func TestOpen_UnparsableStoreFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, HistoryFile), []byte("[/doc.pdf]\nno delimiter here\n"), 0o600))

	_, err := Open(dir, noReload)
	assert.Error(t, err)
}

func TestBookmarks(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)

	got, err := b.LoadBookmarks(doc)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, b.AddBookmark(doc, types.Bookmark{ID: "x", Page: 1}))
	require.NoError(t, b.AddBookmark(doc, types.Bookmark{ID: "fig", Page: 9, X: types.Coord(0), Y: types.Coord(0.5)}))
	require.NoError(t, b.AddBookmark(doc, types.Bookmark{ID: "x", Page: 5}))

	got, err = b.LoadBookmarks(doc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.Bookmark{ID: "x", Page: 5}, got[0], "replacing a bookmark keeps its place in the group")
	assert.Equal(t, "fig", got[1].ID)
	require.True(t, got[1].HasPosition())
	assert.Equal(t, 0.0, *got[1].X, "zero coordinates survive the flat-file round trip")

	content := readFile(t, dir, BookmarksFile)
	assert.Contains(t, content, "["+doc+"]")
	assert.Contains(t, content, "x=5;")
	assert.Contains(t, content, "fig=9;0;0.5;")

	require.NoError(t, b.RemoveBookmark(doc, "x"))
	assert.ErrorIs(t, b.RemoveBookmark(doc, "x"), types.ErrNotFound)
	assert.ErrorIs(t, b.RemoveBookmark("/unknown.pdf", "x"), types.ErrNotFound)

	require.NoError(t, b.RemoveBookmark(doc, "fig"))
	assert.NotContains(t, readFile(t, dir, BookmarksFile), doc, "empty group is dropped")
}

func TestBookmarks_EncodedGroup(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)
	odd := "/home/reader/[draft] notes.pdf"

	require.NoError(t, b.AddBookmark(odd, types.Bookmark{ID: "a", Page: 2}))
	assert.NotContains(t, readFile(t, dir, BookmarksFile), "[draft]")

	other := openTestBackend(t, dir, noReload)
	got, err := other.LoadBookmarks(odd)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].Page)
}

func TestBookmarks_EncodedIDs(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)

	ids := []string{"a=b", "#note", ";semi", "[x]", " pad ", "k`q", `a"b`, "multi\nline", "-", "base64:Y2gy"}
	for i, id := range ids {
		require.NoError(t, b.AddBookmark(doc, types.Bookmark{ID: id, Page: uint(i + 1)}), id)
	}

	other := openTestBackend(t, dir, noReload)
	got, err := other.LoadBookmarks(doc)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	for i, id := range ids {
		assert.Equal(t, types.Bookmark{ID: id, Page: uint(i + 1)}, got[i])
	}

	for _, id := range ids {
		require.NoError(t, other.RemoveBookmark(doc, id), id)
	}
	assert.NotContains(t, readFile(t, dir, BookmarksFile), doc)
}

func TestBookmarks_LegacyAndMalformedValues(t *testing.T) {
	dir := t.TempDir()
	content := "[" + doc + "]\n" +
		"old=4;\n" +
		"new=6;0.1;0.9;\n" +
		"broken=6;0.1;\n" +
		"worse=page;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, BookmarksFile), []byte(content), 0o600))

	b := openTestBackend(t, dir, noReload)
	got, err := b.LoadBookmarks(doc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.Bookmark{ID: "old", Page: 4}, got[0])
	assert.Equal(t, "new", got[1].ID)
	assert.Equal(t, 0.9, *got[1].Y)
}

func TestJumplist(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)

	j1 := types.Jump{Page: 1, X: 0.1, Y: 0.2}
	j2 := types.Jump{Page: 8, X: 0.5, Y: 0.25}

	got, err := b.LoadJumplist(doc)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.SaveJumplist(doc, []types.Jump{j1, j2, j1}))
	got, err = b.LoadJumplist(doc)
	require.NoError(t, err)
	assert.Equal(t, []types.Jump{j1, j2, j1}, got)

	require.NoError(t, b.SaveJumplist(doc, []types.Jump{}))
	got, err = b.LoadJumplist(doc)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// Jumplists share the history group with file info but hold no file info.
	_, err = b.GetFileInfo(doc)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFileInfo(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)

	_, err := b.GetFileInfo(doc)
	assert.ErrorIs(t, err, types.ErrNotFound)

	want := types.FileInfo{
		CurrentPage:      12,
		PageOffset:       2,
		Zoom:             1.25,
		Rotation:         270,
		PagesPerRow:      2,
		FirstPageColumns: "1:2",
		PositionX:        0.125,
		PositionY:        0.5,
		AccessTime:       time.Unix(1700000000, 0),
	}
	require.NoError(t, b.SetFileInfoAt(doc, want, want.AccessTime))
	require.NoError(t, b.SaveJumplist(doc, []types.Jump{{Page: 3}}))

	got, err := b.GetFileInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, want.CurrentPage, got.CurrentPage)
	assert.Equal(t, want.PageOffset, got.PageOffset)
	assert.Equal(t, want.Zoom, got.Zoom)
	assert.Equal(t, want.Rotation, got.Rotation)
	assert.Equal(t, want.PagesPerRow, got.PagesPerRow)
	assert.Equal(t, want.FirstPageColumns, got.FirstPageColumns)
	assert.Equal(t, want.PositionX, got.PositionX)
	assert.Equal(t, want.PositionY, got.PositionY)
	assert.True(t, want.AccessTime.Equal(got.AccessTime))

	content := readFile(t, dir, HistoryFile)
	for _, line := range []string{"page=12", "offset=2", "zoom=1.25", "rotate=270", "pages-per-row=2", "first-page-column=1:2", "time=1700000000", "jumplist=3 0 0"} {
		assert.Contains(t, content, line)
	}
}

func TestSetFileInfo_StampsCurrentTime(t *testing.T) {
	b := openTestBackend(t, t.TempDir(), noReload)

	before := time.Now().Add(-2 * time.Second)
	stale := types.FileInfo{CurrentPage: 4, AccessTime: time.Unix(1600000000, 0)}
	require.NoError(t, b.SetFileInfo(doc, stale))

	got, err := b.GetFileInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.CurrentPage)
	assert.True(t, got.AccessTime.After(before), "access time %v", got.AccessTime)
}

func TestSetFileInfo_MovesGroupAndKeepsOtherKeys(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)

	require.NoError(t, b.SaveJumplist(doc, []types.Jump{{Page: 3}}))
	require.NoError(t, b.SetFileInfo(doc, types.FileInfo{CurrentPage: 1}))
	require.NoError(t, b.SetFileInfo("/other.pdf", types.FileInfo{CurrentPage: 2}))
	require.NoError(t, b.SetFileInfo(doc, types.FileInfo{CurrentPage: 5}))

	content := readFile(t, dir, HistoryFile)
	assert.Less(t, strings.Index(content, "[/other.pdf]"), strings.Index(content, "["+doc+"]"))
	assert.Equal(t, 1, strings.Count(content, "["+doc+"]"))
	assert.Equal(t, 1, strings.Count(content, "jumplist="))

	jumps, err := b.LoadJumplist(doc)
	require.NoError(t, err)
	assert.Equal(t, []types.Jump{{Page: 3}}, jumps)

	got, err := b.GetFileInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, uint(5), got.CurrentPage)
}

func TestRecentFiles_EqualTimesLatestSaveFirst(t *testing.T) {
	b := openTestBackend(t, t.TempDir(), noReload)

	at := time.Unix(1700000000, 0)
	for _, path := range []string{"/1.pdf", "/2.pdf", "/3.pdf", "/1.pdf"} {
		require.NoError(t, b.SetFileInfoAt(path, types.FileInfo{}, at))
	}

	got, err := b.RecentFiles(-1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/1.pdf", "/3.pdf", "/2.pdf"}, got)
}

func TestFileInfo_OlderStoreKeysOptional(t *testing.T) {
	dir := t.TempDir()
	content := "[" + doc + "]\npage=7\noffset=0\nzoom=2\nrotate=90\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, HistoryFile), []byte(content), 0o600))

	b := openTestBackend(t, dir, noReload)
	got, err := b.GetFileInfo(doc)
	require.NoError(t, err)

	def := types.DefaultFileInfo()
	assert.Equal(t, uint(7), got.CurrentPage)
	assert.Equal(t, 2.0, got.Zoom)
	assert.Equal(t, uint(90), got.Rotation)
	assert.Equal(t, def.PagesPerRow, got.PagesPerRow)
	assert.Equal(t, def.FirstPageColumns, got.FirstPageColumns)
	assert.True(t, got.AccessTime.IsZero())

	recent, err := b.RecentFiles(-1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{doc}, recent)
}

func TestRecentFiles(t *testing.T) {
	b := openTestBackend(t, t.TempDir(), noReload)

	base := time.Unix(1700000000, 0)
	require.NoError(t, b.SetFileInfoAt("/books/[c].pdf", types.FileInfo{}, base.Add(2*time.Hour)))
	require.NoError(t, b.SetFileInfoAt("/books/a.pdf", types.FileInfo{}, base))
	require.NoError(t, b.SetFileInfoAt("/papers/b.pdf", types.FileInfo{}, base.Add(time.Hour)))
	require.NoError(t, b.SaveJumplist("/books/jumps-only.pdf", []types.Jump{{Page: 1}}))

	tests := []struct {
		name   string
		max    int
		prefix string
		want   []string
	}{
		{"unbounded", -1, "", []string{"/books/[c].pdf", "/papers/b.pdf", "/books/a.pdf"}},
		{"limited", 2, "", []string{"/books/[c].pdf", "/papers/b.pdf"}},
		{"prefix before limit", 2, "/books/", []string{"/books/[c].pdf", "/books/a.pdf"}},
		{"zero", 0, "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.RecentFiles(tt.max, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)

	got, err := b.ReadHistory()
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, line := range []string{":goto 5", "/needle", "plain text", ":goto 5"} {
		require.NoError(t, b.AppendHistory(line))
	}

	got, err = b.ReadHistory()
	require.NoError(t, err)
	assert.Equal(t, []string{"/needle", ":goto 5"}, got)
	assert.Equal(t, "/needle\n:goto 5\n", readFile(t, dir, InputHistoryFile))
}

func TestHistory_ExternalJunkFiltered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, InputHistoryFile), []byte("junk\n:a\n\n/b\n:a\n"), 0o600))
	b := openTestBackend(t, dir, noReload)

	got, err := b.ReadHistory()
	require.NoError(t, err)
	assert.Equal(t, []string{"/b", ":a"}, got)

	require.NoError(t, b.AppendHistory("?c"))
	assert.Equal(t, "/b\n:a\n?c\n", readFile(t, dir, InputHistoryFile))
}

func TestExternalChangeVisible(t *testing.T) {
	dir := t.TempDir()
	watcher := openTestBackend(t, dir, 20*time.Millisecond)
	writer := openTestBackend(t, dir, noReload)

	require.NoError(t, writer.AddBookmark(doc, types.Bookmark{ID: "remote", Page: 42}))

	require.Eventually(t, func() bool {
		got, err := watcher.LoadBookmarks(doc)
		return err == nil && len(got) == 1 && got[0].ID == "remote"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestExternalChange_FailedReloadKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)
	require.NoError(t, b.AddBookmark(doc, types.Bookmark{ID: "kept", Page: 3}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, BookmarksFile), []byte("["+doc+"]\nnot a key value line\n"), 0o600))
	assert.Error(t, b.Reload())

	got, err := b.LoadBookmarks(doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].ID)
}

func TestExternalChange_RemovedFileKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	b := openTestBackend(t, dir, noReload)
	require.NoError(t, b.SetFileInfo(doc, types.FileInfo{CurrentPage: 2}))

	require.NoError(t, os.Remove(filepath.Join(dir, HistoryFile)))
	assert.Error(t, b.Reload())

	got, err := b.GetFileInfo(doc)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.CurrentPage)
}

// Locks cover single reads and writes, not read-modify-write cycles: a
// writer whose cache predates another process's write overwrites it.
func TestConcurrentWriters_LastWriteWins(t *testing.T) {
	dir := t.TempDir()
	first := openTestBackend(t, dir, noReload)
	second := openTestBackend(t, dir, noReload)

	require.NoError(t, first.AddBookmark(doc, types.Bookmark{ID: "first", Page: 1}))
	require.NoError(t, second.AddBookmark(doc, types.Bookmark{ID: "second", Page: 2}))

	require.NoError(t, first.Reload())
	got, err := first.LoadBookmarks(doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].ID, "the unseen write of first is lost")
}

func TestConcurrentWriters_FilesStayParsable(t *testing.T) {
	dir := t.TempDir()
	writers := []*Backend{
		openTestBackend(t, dir, noReload),
		openTestBackend(t, dir, noReload),
		openTestBackend(t, dir, noReload),
	}

	var g errgroup.Group
	for i, w := range writers {
		g.Go(func() error {
			for n := 0; n < 20; n++ {
				bm := types.Bookmark{ID: strings.Repeat("w", i+1), Page: uint(n)}
				if err := w.AddBookmark(doc, bm); err != nil {
					return err
				}
				if err := w.AppendHistory(":page " + bm.ID); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	reader := openTestBackend(t, dir, noReload)
	got, err := reader.LoadBookmarks(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	history, err := reader.ReadHistory()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{":page w", ":page ww", ":page www"}, history)
}

func TestClose(t *testing.T) {
	b, err := Open(t.TempDir(), 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, b.AddBookmark(doc, types.Bookmark{ID: "a", Page: 1}))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err = b.LoadBookmarks(doc)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, b.AppendHistory(":q"), types.ErrStoreClosed)
	assert.ErrorIs(t, b.AppendHistory("plain text"), types.ErrStoreClosed)
	assert.ErrorIs(t, b.SetFileInfoAt(doc, types.FileInfo{}, time.Now()), types.ErrStoreClosed)
	assert.ErrorIs(t, b.Reload(), types.ErrStoreClosed)
}
