package types

import "time"

// FileInfo is the persisted view state of a document. It is stored wholesale:
// a save replaces every field of the previous record.
type FileInfo struct {
	CurrentPage      uint      `json:"current_page" yaml:"current_page" toml:"current_page"`
	PageOffset       uint      `json:"page_offset" yaml:"page_offset" toml:"page_offset"`
	Zoom             float64   `json:"zoom" yaml:"zoom" toml:"zoom"`
	Rotation         uint      `json:"rotation" yaml:"rotation" toml:"rotation"`
	PagesPerRow      uint      `json:"pages_per_row" yaml:"pages_per_row" toml:"pages_per_row"`
	FirstPageColumns string    `json:"first_page_column" yaml:"first_page_column" toml:"first_page_column"`
	PositionX        float64   `json:"position_x" yaml:"position_x" toml:"position_x"`
	PositionY        float64   `json:"position_y" yaml:"position_y" toml:"position_y"`
	AccessTime       time.Time `json:"access_time" yaml:"access_time" toml:"access_time"`
}

// DefaultFileInfo returns the view state of a document opened for the first
// time: first page, 100% zoom, one page per row.
func DefaultFileInfo() FileInfo {
	return FileInfo{
		Zoom:             1,
		PagesPerRow:      1,
		FirstPageColumns: "1:2",
	}
}
