package overseer

import "fmt"

// Health levels, worst first.
const (
	LevelStalled = "STALLED"
	LevelWarning = "WARNING"
	LevelWatch   = "WATCH"
	LevelHealthy = "HEALTHY"
)

// ColonyHealth holds diagnostic signals derived from an Observation.
type ColonyHealth struct {
	Hobbits    int
	Idle       int
	Pending    int
	Held       int
	InProgress int
	Level      string
	Notes      []string
}

// Triage judges how the colony's work is going.
func Triage(obs *Observation) *ColonyHealth {
	h := &ColonyHealth{
		Hobbits:    len(obs.Hobbits),
		Pending:    len(obs.Work.Pending),
		Held:       len(obs.Work.Held),
		InProgress: len(obs.Work.InProgress),
	}
	for _, hb := range obs.Hobbits {
		if hb.Action == "idle" {
			h.Idle++
		}
	}

	active := h.Pending + h.InProgress
	h.Level = LevelHealthy
	switch {
	case h.Held > 0 && active == 0:
		h.Level = LevelStalled
		h.Notes = append(h.Notes, fmt.Sprintf("all %d orders are on hold", h.Held))
	case h.Held > active:
		h.Level = LevelWarning
		h.Notes = append(h.Notes, fmt.Sprintf("%d of %d orders are on hold", h.Held, h.Held+active))
	case h.Held > 0:
		h.Level = LevelWatch
		h.Notes = append(h.Notes, fmt.Sprintf("%d orders on hold", h.Held))
	}
	if h.Hobbits > 0 && h.Pending > h.Idle && h.Idle == 0 {
		h.Notes = append(h.Notes, fmt.Sprintf("%d orders waiting for a free hobbit", h.Pending))
	}
	return h
}
