package engine

// Event categories.
const (
	CategoryWork   = "work"
	CategoryColony = "colony"
)

// Event is a notable occurrence in the colony.
type Event struct {
	Tick        uint64         `json:"tick"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Meta        map[string]any `json:"meta,omitempty"`
}
