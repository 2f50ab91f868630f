// Package overseer is a client for the colony API: it observes the colony,
// judges how the work is going, and issues orders through the admin
// endpoints.
package overseer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hobbit-home/internal/world"
)

// Observation holds all data collected in one pass over the API.
type Observation struct {
	Status  ColonyStatus `json:"status"`
	Map     MapView      `json:"map"`
	Hobbits []HobbitInfo `json:"hobbits"`
	Work    WorkInfo     `json:"work"`
}

// ColonyStatus mirrors GET /api/v1/status.
type ColonyStatus struct {
	Name       string  `json:"name"`
	ColonyID   string  `json:"colony_id"`
	Tick       uint64  `json:"tick"`
	Time       int     `json:"time"`
	Frame      int     `json:"frame"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Hobbits    int     `json:"hobbits"`
	Idle       int     `json:"idle"`
	Buildings  int     `json:"buildings"`
	Pending    int     `json:"pending"`
	Held       int     `json:"held"`
	InProgress int     `json:"in_progress"`
	Speed      float64 `json:"speed"`
	Running    bool    `json:"running"`
}

// MapView mirrors GET /api/v1/map.
type MapView struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// HobbitInfo mirrors items from GET /api/v1/hobbits.
type HobbitInfo struct {
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

// OrderInfo mirrors an order in API responses.
type OrderInfo struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
	Time     int           `json:"time"`
	Building *BuildingInfo `json:"building,omitempty"`
}

// BuildingInfo mirrors a building in API responses.
type BuildingInfo struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Name string    `json:"name"`
	Icon string    `json:"icon"`
	Box  world.Box `json:"box"`
}

// ClaimInfo is an order some hobbit is working on.
type ClaimInfo struct {
	Worker    int       `json:"worker"`
	Hobbit    string    `json:"hobbit"`
	Remaining int       `json:"remaining"`
	Order     OrderInfo `json:"order"`
}

// WorkInfo mirrors GET /api/v1/work.
type WorkInfo struct {
	Pending    []OrderInfo `json:"pending"`
	Held       []OrderInfo `json:"held"`
	InProgress []ClaimInfo `json:"in_progress"`
}

// Observer fetches colony state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status, map, hobbits and work.
func (o *Observer) Observe() (*Observation, error) {
	obs := &Observation{}

	if err := o.fetchJSON("/api/v1/status", &obs.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/map", &obs.Map); err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}
	if err := o.fetchJSON("/api/v1/hobbits", &obs.Hobbits); err != nil {
		return nil, fmt.Errorf("fetch hobbits: %w", err)
	}
	if err := o.fetchJSON("/api/v1/work", &obs.Work); err != nil {
		return nil, fmt.Errorf("fetch work: %w", err)
	}

	return obs, nil
}

// Status fetches only the colony status.
func (o *Observer) Status() (*ColonyStatus, error) {
	var status ColonyStatus
	if err := o.fetchJSON("/api/v1/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Buildings lists the placed buildings.
func (o *Observer) Buildings() ([]BuildingInfo, error) {
	var buildings []BuildingInfo
	if err := o.fetchJSON("/api/v1/buildings", &buildings); err != nil {
		return nil, err
	}
	return buildings, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
