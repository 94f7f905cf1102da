package realtime

import (
	"encoding/json"
	"fmt"
)

// Event is one realtime notification, as written to websocket clients.
type Event struct {
	Event string          `json:"event"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// NewEvent encodes payload into an Event for topic.
func NewEvent(topic, name string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	return Event{Event: name, Topic: topic, Data: data}, nil
}
