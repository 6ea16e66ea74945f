package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
)

const (
	actionMatchState = "match:state"
	actionMatchFound = "match:found"
	actionMatchTurn  = "match:turn"
	actionError      = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type turnPayload struct {
	Player   string `json:"player"`
	FromNode *int   `json:"from_node"`
	ToNode   *int   `json:"to_node"`
}

type matchFoundPayload struct {
	MatchID string `json:"matchId"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func encodeMessage(action string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: payloadBytes})
}

func encodeSnapshot(match *entity.Match) ([]byte, error) {
	return encodeMessage(actionMatchState, match)
}
