package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

func TestTick_queueInvariantsHold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := world.NewMap(12, 8, world.Floor)
	var walls []world.MapUpdate
	for i := 0; i < 25; i++ {
		walls = append(walls, world.MapUpdate{Position: world.C(rng.Intn(12), rng.Intn(8)), Symbol: world.Wall})
	}
	m = m.Apply(walls)

	tuning := testTuning()
	tuning.FramesPerSecond = 1 // retry on every tick
	tuning.RetryEvery = 1
	tuning.WaitTimeout = 5
	tuning.WanderOdds = 3
	s := NewState(m, hobbitsAt(world.C(0, 0), world.C(11, 7), world.C(5, 4), world.C(0, 7)), tuning, 42)

	enqueued := make(map[*work.Order]bool)
	completed := make(map[*work.Order]bool)
	for tick := 0; tick < 400; tick++ {
		if tick%5 == 0 {
			c := world.C(rng.Intn(12), rng.Intn(8))
			if FindWorkAt(s, c) == nil {
				var o *work.Order
				if s.Map.Is(world.Wall, c) {
					o = work.Dig(c)
				} else {
					o = work.Fill(c)
				}
				o.Time = 3
				s = Enqueue(s, o)
				enqueued[o] = true
			}
		}

		s = Tick(s)
		requireQueueInvariants(t, s)
		for _, e := range s.Events {
			if e.Meta["stage"] == work.StageNone.String() {
				o := s.Queue.Find(func(o *work.Order) bool { return o.ID == e.Meta["order_id"] })
				require.Nil(t, o, "completed order still queued")
			}
		}
		for o := range enqueued {
			if stage, _ := s.Queue.Locate(o); stage == work.StageNone {
				completed[o] = true
			}
		}
		for _, h := range s.Hobbits {
			require.True(t, s.Map.InBounds(h.Position))
		}
	}
	assert.NotEmpty(t, completed, "some work gets done")
}

func TestTick_invariantsSurviveCancels(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		m := world.NewMap(10, 8, world.Floor)
		var walls []world.MapUpdate
		for i := 0; i < 20; i++ {
			walls = append(walls, world.MapUpdate{Position: world.C(rng.Intn(10), rng.Intn(8)), Symbol: world.Wall})
		}
		m = m.Apply(walls)

		tuning := testTuning()
		tuning.FramesPerSecond = 1
		tuning.RetryEvery = 1
		tuning.WaitTimeout = 4
		tuning.WanderOdds = 4
		s := NewState(m, hobbitsAt(world.C(0, 0), world.C(9, 7), world.C(4, 3), world.C(0, 7)), tuning, seed)

		for tick := 0; tick < 1500; tick++ {
			switch rng.Intn(6) {
			case 0:
				c := world.C(rng.Intn(10), rng.Intn(8))
				if FindWorkAt(s, c) == nil {
					o := work.Fill(c)
					if s.Map.Is(world.Wall, c) {
						o = work.Dig(c)
					}
					o.Time = 2
					s = Enqueue(s, o)
				}
			case 1:
				var all []*work.Order
				s.Queue.Each(func(o *work.Order, _ work.Stage) { all = append(all, o) })
				if len(all) > 0 {
					s = CancelWork(s, all[rng.Intn(len(all))])
					requireQueueInvariants(t, s)
				}
			}

			s = Tick(s)
			requireQueueInvariants(t, s)
		}
	}
}

func TestTick_noMapWritesDuringActions(t *testing.T) {
	m := world.NewMap(5, 5, world.Floor).Apply([]world.MapUpdate{
		{Position: world.C(2, 2), Symbol: world.Wall},
	})
	s := newTestState(m, world.C(2, 1))
	o := work.Dig(world.C(2, 2))
	o.Time = 1
	s = Enqueue(s, o)

	before := s.Map
	s = Tick(s) // arrival
	s = Tick(s) // work done, applied at end of tick
	assert.Equal(t, world.Wall, before.At(world.C(2, 2)), "earlier maps are untouched")
	assert.Equal(t, world.Floor, s.Map.At(world.C(2, 2)))
}

func TestTick_actCadence(t *testing.T) {
	m := world.NewMap(10, 1, world.Floor)
	tuning := testTuning()
	tuning.ActEvery = 15
	s := NewState(m, hobbitsAt(world.C(0, 0)), tuning, 1)
	s.Actions[0] = NewGoToAction(0, world.C(9, 0))

	s = Tick(s) // frame 0 acts
	assert.Equal(t, world.C(1, 0), s.Hobbits[0].Position)
	s = run(s, 14)
	assert.Equal(t, world.C(1, 0), s.Hobbits[0].Position)
	s = Tick(s) // frame 15 acts
	assert.Equal(t, world.C(2, 0), s.Hobbits[0].Position)
}

func TestTick_retryReleasesOneHeldOrder(t *testing.T) {
	s := newTestState(world.NewMap(4, 4, world.Wall))
	a, b := work.Dig(world.C(1, 1)), work.Dig(world.C(2, 2))
	s.Queue.Held = []*work.Order{a, b}

	s = Tick(s) // time 0, frame 0
	assert.Equal(t, []*work.Order{a}, s.Queue.Pending)
	assert.Equal(t, []*work.Order{b}, s.Queue.Held)

	s = run(s, 30*10-1) // up to the start of second 10
	assert.Equal(t, []*work.Order{b}, s.Queue.Held)
	s = Tick(s)
	assert.Empty(t, s.Queue.Held)
	assert.Equal(t, []*work.Order{a, b}, s.Queue.Pending)
}

func TestTick_leavesInputUntouched(t *testing.T) {
	s := newTestState(world.NewMap(5, 5, world.Floor), world.C(0, 0))
	s.Actions[0] = NewGoToAction(0, world.C(4, 4))
	next := Tick(s)
	assert.Equal(t, world.C(0, 0), s.Hobbits[0].Position)
	assert.NotEqual(t, world.C(0, 0), next.Hobbits[0].Position)
	assert.Equal(t, uint64(0), s.Clock.Ticks)
	assert.Equal(t, uint64(1), next.Clock.Ticks)
}
