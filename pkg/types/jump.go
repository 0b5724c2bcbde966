package types

// Jump is one entry of a document's jumplist, the ordered navigation history
// used for back/forward movement. Order is chronological; entries may repeat.
type Jump struct {
	Page uint    `json:"page" yaml:"page" toml:"page"`
	X    float64 `json:"x" yaml:"x" toml:"x"`
	Y    float64 `json:"y" yaml:"y" toml:"y"`
}
