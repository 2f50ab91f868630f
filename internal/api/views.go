package api

import (
	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

type orderView struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Time     int            `json:"time"`
	Building *work.Building `json:"building,omitempty"`
}

type claimView struct {
	Worker    int       `json:"worker"`
	Hobbit    string    `json:"hobbit"`
	Remaining int       `json:"remaining"`
	Order     orderView `json:"order"`
}

type queueView struct {
	Pending    []orderView `json:"pending"`
	Held       []orderView `json:"held"`
	InProgress []claimView `json:"in_progress"`
}

type hobbitView struct {
	Index    int        `json:"index"`
	Name     string     `json:"name"`
	FullName string     `json:"full_name"`
	Position world.Cell `json:"position"`
	Mood     string     `json:"mood"`
	Hunger   string     `json:"hunger"`
	Thoughts string     `json:"thoughts"`
	Action   string     `json:"action"`
	OrderID  string     `json:"order_id,omitempty"`
}

func newOrderView(o *work.Order) orderView {
	return orderView{
		ID:       o.ID,
		Kind:     o.Kind.String(),
		X:        o.Position.X,
		Y:        o.Position.Y,
		Time:     o.Time,
		Building: o.Building,
	}
}

func newQueueView(s *engine.State) queueView {
	v := queueView{
		Pending:    make([]orderView, 0, len(s.Queue.Pending)),
		Held:       make([]orderView, 0, len(s.Queue.Held)),
		InProgress: make([]claimView, 0, len(s.Queue.InProgress)),
	}
	for _, o := range s.Queue.Pending {
		v.Pending = append(v.Pending, newOrderView(o))
	}
	for _, o := range s.Queue.Held {
		v.Held = append(v.Held, newOrderView(o))
	}
	for _, ip := range s.Queue.InProgress {
		c := claimView{
			Worker:    ip.Worker,
			Hobbit:    s.Hobbits[ip.Worker].Name,
			Remaining: ip.Order.Time,
			Order:     newOrderView(ip.Order),
		}
		if wa, ok := s.Actions[ip.Worker].(*engine.WorkAction); ok {
			c.Remaining = wa.Remaining()
		}
		v.InProgress = append(v.InProgress, c)
	}
	return v
}

func newHobbitViews(s *engine.State) []hobbitView {
	views := make([]hobbitView, 0, len(s.Hobbits))
	for i, h := range s.Hobbits {
		v := hobbitView{
			Index:    i,
			Name:     h.Name,
			FullName: h.FullName,
			Position: h.Position,
			Mood:     h.Mood.String(),
			Hunger:   h.Hunger.String(),
			Thoughts: h.Thoughts,
			Action:   string(s.Actions[i].Kind()),
		}
		if o := s.Actions[i].Order(); o != nil {
			v.OrderID = o.ID
		}
		views = append(views, v)
	}
	return views
}
