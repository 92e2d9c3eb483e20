package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is a plain valid implementation to embed or use directly.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SnapshotRefreshed is announced by the ingestion pipeline when a new dataset
// version has landed.
const SnapshotRefreshedType = "SNAPSHOT_REFRESHED"

func NewSnapshotRefreshed(version string) Event {
	return BaseEvent{
		Type:       SnapshotRefreshedType,
		Data:       map[string]interface{}{"version": version},
		OccurredAt: time.Now().UTC(),
	}
}
