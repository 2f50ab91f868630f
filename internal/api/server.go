// Package api provides the HTTP API for watching and directing the colony.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/persistence"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// Server serves the colony over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // nil disables /snapshot
	ColonyID string
	Seed     int64
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// OrderLimiter throttles order submission; nil uses 120 per minute.
	OrderLimiter *RateLimiter

	streamConns int32
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	limiter := s.OrderLimiter
	if limiter == nil {
		limiter = NewRateLimiter(120, time.Minute)
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/hobbits", s.handleHobbits)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/catalogue", s.handleCatalogue)
	mux.HandleFunc("/api/v1/work", s.handleWork)
	mux.HandleFunc("/api/v1/work/at", s.handleWorkAt)
	mux.HandleFunc("/api/v1/building/at", s.handleBuildingAt)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/orders", s.adminOnly(RateLimitMiddleware(limiter, s.handleOrders)))
	mux.HandleFunc("/api/v1/orders/cancel", s.adminOnly(s.handleCancel))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine. Shut the returned
// server down to stop.
func (s *Server) Start() *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HOBBIT_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Sim.View(func(st *engine.State) {
		status = map[string]any{
			"name":        "Hobbit Home",
			"colony_id":   s.ColonyID,
			"tick":        st.Clock.Ticks,
			"time":        st.Clock.Time,
			"frame":       st.Clock.Frame,
			"anim":        st.Clock.Anim,
			"width":       st.Map.Width,
			"height":      st.Map.Height,
			"hobbits":     len(st.Hobbits),
			"idle":        len(st.IdleHobbits()),
			"buildings":   len(st.Buildings),
			"pending":     len(st.Queue.Pending),
			"held":        len(st.Queue.Held),
			"in_progress": len(st.Queue.InProgress),
		}
	})
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	s.Sim.View(func(st *engine.State) {
		resp = map[string]any{
			"width":  st.Map.Width,
			"height": st.Map.Height,
			"rows":   st.Map.Rows(),
		}
	})
	writeJSON(w, resp)
}

func (s *Server) handleHobbits(w http.ResponseWriter, r *http.Request) {
	var views []hobbitView
	s.Sim.View(func(st *engine.State) {
		views = newHobbitViews(st)
	})
	writeJSON(w, views)
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	var buildings []*work.Building
	s.Sim.View(func(st *engine.State) {
		buildings = append([]*work.Building{}, st.Buildings...)
	})
	writeJSON(w, buildings)
}

func (s *Server) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, work.Catalogue)
}

func (s *Server) handleWork(w http.ResponseWriter, r *http.Request) {
	var v queueView
	s.Sim.View(func(st *engine.State) {
		v = newQueueView(st)
	})
	writeJSON(w, v)
}

func (s *Server) handleWorkAt(w http.ResponseWriter, r *http.Request) {
	cell, err := cellParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		o     *work.Order
		stage work.Stage
	)
	s.Sim.View(func(st *engine.State) {
		if o = engine.FindWorkAt(st, cell); o != nil {
			stage, _ = st.Queue.Locate(o)
		}
	})
	if o == nil {
		http.Error(w, "no work at "+cell.String(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"stage": stage.String(),
		"order": newOrderView(o),
	})
}

func (s *Server) handleBuildingAt(w http.ResponseWriter, r *http.Request) {
	cell, err := cellParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var b *work.Building
	s.Sim.View(func(st *engine.State) {
		b = engine.FindBuildingAt(st, cell.Box())
	})
	if b == nil {
		http.Error(w, "no building at "+cell.String(), http.StatusNotFound)
		return
	}
	writeJSON(w, b)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	writeJSON(w, s.Sim.RecentEvents(limit))
}

type orderRequest struct {
	Type     string `json:"type"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Building string `json:"building,omitempty"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	kind, ok := work.ParseKind(req.Type)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown order type %q", req.Type), http.StatusBadRequest)
		return
	}

	cell := world.C(req.X, req.Y)
	var (
		o   *work.Order
		err error
	)
	switch kind {
	case work.KindDig:
		o, err = s.Sim.OrderDig(cell)
	case work.KindFill:
		o, err = s.Sim.OrderFill(cell)
	case work.KindBuild:
		o, err = s.Sim.OrderBuild(work.BuildingType(req.Building), cell)
	case work.KindDemolish:
		o, err = s.Sim.OrderDemolish(cell)
	}
	if err != nil {
		http.Error(w, err.Error(), commandStatus(err))
		return
	}

	w.Header().Set("Location", "/api/v1/work/at?x="+strconv.Itoa(o.Position.X)+"&y="+strconv.Itoa(o.Position.Y))
	writeJSONStatus(w, http.StatusCreated, newOrderView(o))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.Sim.CancelOrder(req.ID); err != nil {
		http.Error(w, err.Error(), commandStatus(err))
		return
	}
	writeJSON(w, map[string]string{"id": req.ID, "message": "order cancelled"})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not available", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveColony(s.ColonyID, s.Seed, s.Sim); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    s.Sim.CurrentTick(),
		"message": "snapshot saved",
	})
}

// commandStatus maps command validation errors to HTTP status codes.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrWorkExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoBuilding), errors.Is(err, engine.ErrUnknownOrder):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrNotWall),
		errors.Is(err, engine.ErrNotFloor),
		errors.Is(err, engine.ErrBuildBlocked),
		errors.Is(err, engine.ErrUnknownBuilding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func cellParam(r *http.Request) (world.Cell, error) {
	q := r.URL.Query()
	x, err := strconv.Atoi(q.Get("x"))
	if err != nil {
		return world.Cell{}, fmt.Errorf("invalid x %q", q.Get("x"))
	}
	y, err := strconv.Atoi(q.Get("y"))
	if err != nil {
		return world.Cell{}, fmt.Errorf("invalid y %q", q.Get("y"))
	}
	return world.C(x, y), nil
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
