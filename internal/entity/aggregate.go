package entity

import "time"

// EventRecord represents an event stored in the database.
type EventRecord struct {
	ID         string    `json:"id" db:"id"`
	StreamID   string    `json:"stream_id" db:"stream_id"`
	StreamType string    `json:"stream_type" db:"stream_type"`
	Version    int       `json:"version" db:"version"`
	EventType  string    `json:"event_type" db:"event_type"`
	Payload    []byte    `json:"payload" db:"payload"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Event represents a domain event.
type Event interface {
	EventType() string
}

// Aggregate is a stream whose state can be rebuilt from its events.
type Aggregate interface {
	GetAggregateID() string
	GetVersion() int
	ApplyEvent(event Event) error
}

// AggregateBase provides a basic implementation for an aggregate.
type AggregateBase struct {
	ID      string
	Version int
}

func (a *AggregateBase) GetAggregateID() string {
	return a.ID
}

func (a *AggregateBase) GetVersion() int {
	return a.Version
}
