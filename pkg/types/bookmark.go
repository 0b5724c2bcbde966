package types

// Bookmark is a named position within a document. X and Y are the horizontal
// and vertical scroll ratios of the position; a nil coordinate means no
// position was stored, which is distinct from a stored zero.
type Bookmark struct {
	ID   string   `json:"id" yaml:"id" toml:"id"`
	Page uint     `json:"page" yaml:"page" toml:"page"`
	X    *float64 `json:"x,omitempty" yaml:"x,omitempty" toml:"x,omitempty"`
	Y    *float64 `json:"y,omitempty" yaml:"y,omitempty" toml:"y,omitempty"`
}

// Coord returns a pointer to v, for filling Bookmark coordinates.
func Coord(v float64) *float64 {
	return &v
}

// HasPosition reports whether both coordinates are set.
func (b Bookmark) HasPosition() bool {
	return b.X != nil && b.Y != nil
}

// Clone returns a deep copy of b so that callers and backends never share
// coordinate storage.
func (b Bookmark) Clone() Bookmark {
	out := Bookmark{ID: b.ID, Page: b.Page}
	if b.X != nil {
		out.X = Coord(*b.X)
	}
	if b.Y != nil {
		out.Y = Coord(*b.Y)
	}
	return out
}
