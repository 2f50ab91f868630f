package overseer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OrderRequest is the body of POST /api/v1/orders.
type OrderRequest struct {
	Type     string `json:"type"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Building string `json:"building,omitempty"`
}

// APIError is a non-success response from the admin API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// Actor issues commands via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Order places a work order.
func (a *Actor) Order(req OrderRequest) (*OrderInfo, error) {
	var order OrderInfo
	if err := a.post("/api/v1/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel drops an order by ID.
func (a *Actor) Cancel(id string) error {
	return a.post("/api/v1/orders/cancel", map[string]string{"id": id}, nil)
}

// SetSpeed changes the simulation speed and returns the speed now in effect.
func (a *Actor) SetSpeed(speed float64) (float64, error) {
	var resp struct {
		Speed float64 `json:"speed"`
	}
	if err := a.post("/api/v1/speed", map[string]float64{"speed": speed}, &resp); err != nil {
		return 0, err
	}
	return resp.Speed, nil
}

// Snapshot asks the server to persist the colony now, returning the tick
// saved.
func (a *Actor) Snapshot() (uint64, error) {
	var resp struct {
		Tick uint64 `json:"tick"`
	}
	if err := a.post("/api/v1/snapshot", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Tick, nil
}

func (a *Actor) post(path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
