package ws

import (
	"encoding/json"

	"github.com/PrometheusPrograms/balloono/internal/game"
)

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "arena/input"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// JoinRequest is the body for "arena/join".
type JoinRequest struct {
	Room string `json:"room"`
}

// JoinBody answers a join with the player id and the initial snapshot.
type JoinBody struct {
	PlayerID string        `json:"playerId"`
	State    game.Snapshot `json:"state"`
}

// InputRequest is the body for "arena/input".
type InputRequest struct {
	Move         float64 `json:"move"`
	PlaceBalloon bool    `json:"placeBalloon"`
	PlaceBanana  bool    `json:"placeBanana"`
}

// Empty ACK body (useful for many handlers).
type AckBody struct{}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}
