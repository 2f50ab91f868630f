package snapshot

import (
	"fmt"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// FromState captures s. seed is the colony seed; it is combined with the
// tick to reseed the random source on restore.
func FromState(colonyID string, seed int64, s *engine.State) SnapshotV1 {
	snap := SnapshotV1{
		Header: Header{
			Version:  Version,
			ColonyID: colonyID,
			Tick:     s.Clock.Ticks,
		},
		Seed: seed,
		Clock: ClockV1{
			Ticks: s.Clock.Ticks,
			Time:  s.Clock.Time,
			Frame: s.Clock.Frame,
			Anim:  s.Clock.Anim,
		},
		Tuning: TuningV1(s.Tuning),
		Map: MapV1{
			Width:  s.Map.Width,
			Height: s.Map.Height,
			Rows:   s.Map.Rows(),
		},
	}

	for _, h := range s.Hobbits {
		snap.Hobbits = append(snap.Hobbits, HobbitV1{
			Name:     h.Name,
			FullName: h.FullName,
			Pos:      pos(h.Position),
			Mood:     int(h.Mood),
			Hunger:   int(h.Hunger),
			Thoughts: h.Thoughts,
		})
	}
	for _, b := range s.Buildings {
		snap.Buildings = append(snap.Buildings, buildingV1(b))
	}

	for _, o := range s.Queue.Pending {
		snap.Pending = append(snap.Pending, orderV1(o))
	}
	for _, ip := range s.Queue.InProgress {
		snap.Held = append(snap.Held, orderV1(ip.Order))
	}
	for _, o := range s.Queue.Held {
		snap.Held = append(snap.Held, orderV1(o))
	}
	return snap
}

// Restore rebuilds a state from snap with every hobbit idle.
func Restore(snap SnapshotV1) (*engine.State, error) {
	m, err := world.ParseMap(snap.Map.Rows)
	if err != nil {
		return nil, fmt.Errorf("restore map: %w", err)
	}
	if m.Width != snap.Map.Width || m.Height != snap.Map.Height {
		return nil, fmt.Errorf("restore map: size %dx%d, want %dx%d", m.Width, m.Height, snap.Map.Width, snap.Map.Height)
	}

	hobbits := make([]agents.Hobbit, 0, len(snap.Hobbits))
	for _, h := range snap.Hobbits {
		hobbits = append(hobbits, agents.Hobbit{
			Name:     h.Name,
			FullName: h.FullName,
			Position: cell(h.Pos),
			Mood:     agents.Mood(h.Mood).Clamp(),
			Hunger:   agents.Hunger(h.Hunger).Clamp(),
			Thoughts: h.Thoughts,
		})
	}

	s := engine.NewState(m, hobbits, engine.Tuning(snap.Tuning), snap.Seed^int64(snap.Clock.Ticks))
	s.Clock = engine.Clock{
		Ticks: snap.Clock.Ticks,
		Time:  snap.Clock.Time,
		Frame: snap.Clock.Frame,
		Anim:  snap.Clock.Anim,
	}

	byID := make(map[string]*work.Building, len(snap.Buildings))
	for _, bv := range snap.Buildings {
		b := building(bv)
		byID[b.ID] = b
		s.Buildings = append(s.Buildings, b)
	}

	for _, ov := range snap.Pending {
		o, err := order(ov, byID)
		if err != nil {
			return nil, err
		}
		s.Queue.Pending = append(s.Queue.Pending, o)
	}
	for _, ov := range snap.Held {
		o, err := order(ov, byID)
		if err != nil {
			return nil, err
		}
		s.Queue.Held = append(s.Queue.Held, o)
	}
	return s, nil
}

func pos(c world.Cell) [2]int  { return [2]int{c.X, c.Y} }
func cell(p [2]int) world.Cell { return world.C(p[0], p[1]) }

func buildingV1(b *work.Building) BuildingV1 {
	return BuildingV1{
		ID:     b.ID,
		Type:   string(b.Type),
		Name:   b.Name,
		Icon:   b.Icon,
		Center: pos(b.Box.Center),
		Size:   [2]int{b.Box.Size.W, b.Box.Size.H},
	}
}

func building(bv BuildingV1) *work.Building {
	return &work.Building{
		ID:   bv.ID,
		Type: work.BuildingType(bv.Type),
		Name: bv.Name,
		Icon: bv.Icon,
		Box: world.Box{
			Center: cell(bv.Center),
			Size:   world.Size{W: bv.Size[0], H: bv.Size[1]},
		},
	}
}

func orderV1(o *work.Order) OrderV1 {
	ov := OrderV1{
		ID:   o.ID,
		Kind: o.Kind.String(),
		Pos:  pos(o.Position),
		Time: o.Time,
	}
	switch o.Kind {
	case work.KindBuild:
		b := buildingV1(o.Building)
		ov.Building = &b
	case work.KindDemolish:
		ov.BuildingID = o.Building.ID
	}
	return ov
}

func order(ov OrderV1, buildings map[string]*work.Building) (*work.Order, error) {
	kind, ok := work.ParseKind(ov.Kind)
	if !ok {
		return nil, fmt.Errorf("restore order %s: unknown kind %q", ov.ID, ov.Kind)
	}
	o := &work.Order{
		ID:       ov.ID,
		Kind:     kind,
		Position: cell(ov.Pos),
		Time:     ov.Time,
	}
	switch kind {
	case work.KindBuild:
		if ov.Building == nil {
			return nil, fmt.Errorf("restore order %s: build without building", ov.ID)
		}
		o.Building = building(*ov.Building)
	case work.KindDemolish:
		b, ok := buildings[ov.BuildingID]
		if !ok {
			return nil, fmt.Errorf("restore order %s: unknown building %s", ov.ID, ov.BuildingID)
		}
		o.Building = b
	}
	return o, nil
}
