package plain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func TestGroupName(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		encoded bool
	}{
		{"plain path kept", "/home/reader/book.pdf", false},
		{"dots and spaces kept", "/home/reader/my book.v2.pdf", false},
		{"opening bracket encoded", "/home/reader/[draft].pdf", true},
		{"closing bracket encoded", "/tmp/a]b.pdf", true},
		{"newline encoded", "/tmp/two\nlines.pdf", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := groupName(tt.path)
			if tt.encoded {
				assert.NotEqual(t, tt.path, group)
				assert.NotContains(t, group, "[")
				assert.NotContains(t, group, "]")
			} else {
				assert.Equal(t, tt.path, group)
			}
			assert.Equal(t, tt.path, pathFromGroup(group))
		})
	}
}

func TestBookmarkKey(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		encoded bool
	}{
		{"plain id kept", "ch2", false},
		{"inner space and colon kept", "part 1: intro", false},
		{"empty", "", true},
		{"delimiter", "a=b", true},
		{"hash comment", "#note", true},
		{"semicolon comment", ";semi", true},
		{"section header", "[x]", true},
		{"surrounding spaces", " pad ", true},
		{"backquote", "k`q", true},
		{"double quote", `a"b`, true},
		{"newline", "multi\nline", true},
		{"auto increment", "-", true},
		{"encoded prefix", "base64:Y2gy", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := bookmarkKey(tt.id)
			if tt.encoded {
				assert.NotEqual(t, tt.id, key)
				assert.True(t, strings.HasPrefix(key, encodedKeyPrefix), key)
			} else {
				assert.Equal(t, tt.id, key)
			}
			assert.Equal(t, tt.id, bookmarkID(key))
		})
	}
}

func TestEncodeBookmark(t *testing.T) {
	assert.Equal(t, "4;", encodeBookmark(types.Bookmark{ID: "a", Page: 4}))
	assert.Equal(t, "4;0.25;0.5;", encodeBookmark(types.Bookmark{ID: "a", Page: 4, X: types.Coord(0.25), Y: types.Coord(0.5)}))
	assert.Equal(t, "4;0;2.2250738585072014e-308;", encodeBookmark(types.Bookmark{ID: "a", Page: 4, X: types.Coord(0)}))
}

func TestDecodeBookmark(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
		page  uint
		x, y  *float64
	}{
		{"legacy single token", "12;", true, 12, nil, nil},
		{"legacy without terminator", "12", true, 12, nil, nil},
		{"three tokens", "3;0.25;0.75;", true, 3, types.Coord(0.25), types.Coord(0.75)},
		{"zero is a real position", "3;0;0;", true, 3, types.Coord(0), types.Coord(0)},
		{"unset marker", "3;2.2250738585072014e-308;0.5;", true, 3, nil, types.Coord(0.5)},
		{"two tokens", "3;0.25;", false, 0, nil, nil},
		{"four tokens", "3;0.25;0.5;0.75;", false, 0, nil, nil},
		{"bad page", "three;", false, 0, nil, nil},
		{"negative page", "-1;", false, 0, nil, nil},
		{"bad coordinate", "3;left;0.5;", false, 0, nil, nil},
		{"empty", "", false, 0, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := decodeBookmark("id", tt.value)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, "id", b.ID)
			assert.Equal(t, tt.page, b.Page)
			assert.Equal(t, tt.x, b.X)
			assert.Equal(t, tt.y, b.Y)
		})
	}
}

func TestJumplistCodec(t *testing.T) {
	jumps := []types.Jump{{Page: 1, X: 0.1, Y: 0.2}, {Page: 30, X: 0, Y: 1}}
	encoded := encodeJumplist(jumps)
	assert.Equal(t, "1 0.1 0.2 30 0 1", encoded)
	assert.Equal(t, jumps, decodeJumplist(encoded))

	assert.Empty(t, encodeJumplist(nil))
	assert.Empty(t, decodeJumplist(""))
}

func TestDecodeJumplist_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []types.Jump
	}{
		{"trailing partial triple dropped", "1 0.1 0.2 2 0.3", []types.Jump{{Page: 1, X: 0.1, Y: 0.2}}},
		{"single token", "7", []types.Jump{}},
		{"bad token stops decoding", "1 0.1 0.2 x 0 0 3 0 0", []types.Jump{{Page: 1, X: 0.1, Y: 0.2}}},
		{"extra whitespace", "  1\t0.5 0.5\n\n2 0 0 ", []types.Jump{{Page: 1, X: 0.5, Y: 0.5}, {Page: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeJumplist(tt.value))
		})
	}
}
