package plain

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// unsetCoordinate marks a missing coordinate inside a three-token bookmark
// value. It is the smallest normal double, which no real scroll ratio takes.
const unsetCoordinate = 0x1p-1022

// groupName returns the key-file group for a document. Paths that would end
// the group header early or span lines are base64 encoded.
func groupName(path string) string {
	if strings.ContainsAny(path, "[]\r\n") {
		return base64.StdEncoding.EncodeToString([]byte(path))
	}
	return path
}

// pathFromGroup reverses groupName. Absolute paths start with '/', which
// base64 output of an absolute path never does.
func pathFromGroup(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	decoded, err := base64.StdEncoding.DecodeString(name)
	if err != nil {
		return name
	}
	return string(decoded)
}

// encodedKeyPrefix marks a bookmark key holding a base64 encoded ID.
const encodedKeyPrefix = "base64:"

// bookmarkKey returns the key name a bookmark ID is stored under. IDs that
// the key-file parser would read back differently, or not at all, are base64
// encoded behind encodedKeyPrefix.
func bookmarkKey(id string) string {
	if plainKeyName(id) {
		return id
	}
	return encodedKeyPrefix + base64.RawURLEncoding.EncodeToString([]byte(id))
}

// bookmarkID reverses bookmarkKey.
func bookmarkID(key string) string {
	encoded, ok := strings.CutPrefix(key, encodedKeyPrefix)
	if !ok {
		return key
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return key
	}
	return string(decoded)
}

// plainKeyName reports whether id survives a write and re-parse as a key
// name unchanged.
func plainKeyName(id string) bool {
	switch {
	case id == "" || id == "-":
		return false
	case strings.TrimSpace(id) != id:
		return false
	case strings.ContainsAny(id[:1], "#;["):
		return false
	case strings.ContainsAny(id, "=\"`\r\n"):
		return false
	case strings.HasPrefix(id, encodedKeyPrefix):
		return false
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// encodeBookmark renders a bookmark value as a ';'-terminated list: "page;"
// when the bookmark has no position, "page;x;y;" otherwise.
func encodeBookmark(b types.Bookmark) string {
	page := strconv.FormatUint(uint64(b.Page), 10)
	if b.X == nil && b.Y == nil {
		return page + ";"
	}
	return page + ";" + formatCoord(b.X) + ";" + formatCoord(b.Y) + ";"
}

func formatCoord(v *float64) string {
	if v == nil {
		return formatFloat(unsetCoordinate)
	}
	return formatFloat(*v)
}

// decodeBookmark parses a bookmark value. Both the one-token form written by
// older versions and the three-token form are accepted.
func decodeBookmark(id, value string) (types.Bookmark, bool) {
	tokens := strings.Split(value, ";")
	if n := len(tokens); n > 0 && strings.TrimSpace(tokens[n-1]) == "" {
		tokens = tokens[:n-1]
	}

	var (
		b   = types.Bookmark{ID: id}
		err error
	)
	switch len(tokens) {
	case 1:
		b.Page, err = parsePage(tokens[0])
	case 3:
		if b.Page, err = parsePage(tokens[0]); err != nil {
			break
		}
		if b.X, err = parseCoord(tokens[1]); err != nil {
			break
		}
		b.Y, err = parseCoord(tokens[2])
	default:
		return types.Bookmark{}, false
	}
	if err != nil {
		return types.Bookmark{}, false
	}
	return b, true
}

func parsePage(s string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 0)
	return uint(v), err
}

func parseCoord(s string) (*float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	if v == unsetCoordinate || math.IsNaN(v) {
		return nil, nil
	}
	return types.Coord(v), nil
}

// encodeJumplist renders jumps as whitespace-separated "page x y" triples.
func encodeJumplist(jumps []types.Jump) string {
	parts := make([]string, 0, 3*len(jumps))
	for _, j := range jumps {
		parts = append(parts,
			strconv.FormatUint(uint64(j.Page), 10),
			formatFloat(j.X),
			formatFloat(j.Y),
		)
	}
	return strings.Join(parts, " ")
}

// decodeJumplist parses triples until the input ends, a triple is
// incomplete, or a token does not parse. Complete triples before that point
// are kept.
func decodeJumplist(value string) []types.Jump {
	tokens := strings.Fields(value)
	jumps := make([]types.Jump, 0, len(tokens)/3)
	for i := 0; i+3 <= len(tokens); i += 3 {
		page, err := parsePage(tokens[i])
		if err != nil {
			break
		}
		x, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			break
		}
		y, err := strconv.ParseFloat(tokens[i+2], 64)
		if err != nil {
			break
		}
		jumps = append(jumps, types.Jump{Page: page, X: x, Y: y})
	}
	return jumps
}
