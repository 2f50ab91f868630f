package work

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/hobbit-home/internal/world"
)

// BuildingType identifies a kind of building.
type BuildingType string

const (
	Pantry     BuildingType = "Pantry"
	Bedroom    BuildingType = "Bedroom"
	DiningRoom BuildingType = "DiningRoom"
	Farm       BuildingType = "Farm"
	Kitchen    BuildingType = "Kitchen"
	Tavern     BuildingType = "Tavern"
	Workshop   BuildingType = "Workshop"
)

// BuildingDef describes a buildable room.
type BuildingDef struct {
	Type BuildingType `json:"type"`
	Name string       `json:"name"`
	Size world.Size   `json:"size"`
	Icon string       `json:"icon"`
}

// Catalogue lists every building the colony can construct, in menu order.
var Catalogue = []BuildingDef{
	{Type: Pantry, Name: "Pantry", Size: world.Size{W: 3, H: 4}, Icon: "p"},
	{Type: Bedroom, Name: "Bedroom", Size: world.Size{W: 3, H: 3}, Icon: "B"},
	{Type: DiningRoom, Name: "Dining Room", Size: world.Size{W: 4, H: 4}, Icon: "D"},
	{Type: Farm, Name: "Farm", Size: world.Size{W: 3, H: 3}, Icon: "f"},
	{Type: Kitchen, Name: "Kitchen", Size: world.Size{W: 3, H: 3}, Icon: "k"},
	{Type: Tavern, Name: "Tavern", Size: world.Size{W: 3, H: 3}, Icon: "t"},
	{Type: Workshop, Name: "Workshop", Size: world.Size{W: 3, H: 3}, Icon: "W"},
}

// LookupDef finds a catalogue entry by type. Matching ignores case.
func LookupDef(t BuildingType) (BuildingDef, bool) {
	for _, def := range Catalogue {
		if strings.EqualFold(string(def.Type), string(t)) {
			return def, true
		}
	}
	return BuildingDef{}, false
}

// Building is a placed room. Buildings are compared by identity; ID
// survives persistence.
type Building struct {
	ID   string       `json:"id"`
	Type BuildingType `json:"type"`
	Name string       `json:"name"`
	Icon string       `json:"icon"`
	Box  world.Box    `json:"box"`
}

// NewBuilding places def centered on cell.
func NewBuilding(def BuildingDef, cell world.Cell) *Building {
	return &Building{
		ID:   uuid.NewString(),
		Type: def.Type,
		Name: def.Name,
		Icon: def.Icon,
		Box:  world.Box{Center: cell, Size: def.Size},
	}
}

func (b *Building) String() string {
	return fmt.Sprintf("%s@%s", b.Type, b.Box.Center)
}
