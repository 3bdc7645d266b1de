package domain

// EventType defines the type of real-time event pushed to dashboard clients.
type EventType string

const (
	EventMetricsUpdated EventType = "METRICS_UPDATED"
	EventPong           EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}
