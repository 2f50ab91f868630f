package overseer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/api"
	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/world"
)

func startColony(t *testing.T) (*httptest.Server, *api.Server) {
	t.Helper()
	st := engine.NewState(world.DefaultMap(), agents.DefaultColony(), engine.DefaultTuning(), 1)
	srv := &api.Server{
		Sim:      engine.NewSimulation(st),
		Eng:      engine.NewEngine(30),
		ColonyID: "test",
		AdminKey: "key",
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestObserveAndAct(t *testing.T) {
	ts, srv := startColony(t)
	obs := NewObserver(ts.URL)
	act := NewActor(ts.URL, "key")

	o, err := act.Order(OrderRequest{Type: "dig", X: 8, Y: 11})
	require.NoError(t, err)
	assert.Equal(t, "Dig", o.Kind)

	b, err := act.Order(OrderRequest{Type: "build", X: 30, Y: 15, Building: "Kitchen"})
	require.NoError(t, err)
	require.NotNil(t, b.Building)
	assert.Equal(t, "Kitchen", b.Building.Name)

	srv.Sim.Step()

	snap, err := obs.Observe()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Status.Tick)
	assert.Equal(t, 5, snap.Status.Hobbits)
	assert.Len(t, snap.Map.Rows, world.DefaultHeight)
	assert.Len(t, snap.Hobbits, 5)
	require.Len(t, snap.Work.InProgress, 2)
	assert.Equal(t, o.ID, snap.Work.InProgress[0].Order.ID)

	require.NoError(t, act.Cancel(o.ID))
	status, err := obs.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, status.InProgress)

	speed, err := act.SetSpeed(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, speed)

	buildings, err := obs.Buildings()
	require.NoError(t, err)
	assert.Empty(t, buildings)
}

func TestActor_errors(t *testing.T) {
	ts, _ := startColony(t)

	_, err := NewActor(ts.URL, "key").Order(OrderRequest{Type: "dig", X: 1, Y: 15})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "not a wall")

	err = NewActor(ts.URL, "wrong").Cancel("x")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = NewActor(ts.URL, "key").Snapshot()
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestObserver_errors(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	_, err := NewObserver(ts.URL).Observe()
	assert.ErrorContains(t, err, "fetch status")
}

func TestWatch(t *testing.T) {
	ts, srv := startColony(t)
	_, err := srv.Sim.OrderFill(world.C(3, 15))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan engine.Event, 10)
	done := make(chan error, 1)
	go func() {
		done <- NewObserver(ts.URL).Watch(ctx, func(e engine.Event) { got <- e })
	}()

	e := <-got
	assert.Equal(t, "pending", e.Meta["stage"])
	cancel()
	assert.NoError(t, <-done)
}

func TestTriage(t *testing.T) {
	hobbits := []HobbitInfo{{Action: "idle"}, {Action: "work"}}
	order := OrderInfo{Kind: "Dig"}

	h := Triage(&Observation{Hobbits: hobbits})
	assert.Equal(t, LevelHealthy, h.Level)
	assert.Equal(t, 1, h.Idle)

	h = Triage(&Observation{Hobbits: hobbits, Work: WorkInfo{Held: []OrderInfo{order}}})
	assert.Equal(t, LevelStalled, h.Level)

	h = Triage(&Observation{Hobbits: hobbits, Work: WorkInfo{
		Held:    []OrderInfo{order, order},
		Pending: []OrderInfo{order},
	}})
	assert.Equal(t, LevelWarning, h.Level)

	h = Triage(&Observation{Hobbits: hobbits, Work: WorkInfo{
		Held:       []OrderInfo{order},
		InProgress: []ClaimInfo{{Order: order}},
	}})
	assert.Equal(t, LevelWatch, h.Level)

	busy := []HobbitInfo{{Action: "work"}}
	h = Triage(&Observation{Hobbits: busy, Work: WorkInfo{Pending: []OrderInfo{order, order}}})
	assert.Contains(t, h.Notes, "2 orders waiting for a free hobbit")
}
