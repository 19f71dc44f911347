// Package events carries board mutation notices from the backend to
// watching clients and to external brokers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Entity names the board a mutation touched
type Entity string

const (
	EntityJob       Entity = "job"
	EntityApplicant Entity = "applicant"
)

// Action names what happened to the entity
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is one successful mutation
type Event struct {
	Entity Entity    `json:"entity"`
	Action Action    `json:"action"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
}

// New stamps an event with the current time
func New(entity Entity, action Action, id string) Event {
	return Event{Entity: entity, Action: action, ID: id, At: time.Now().UTC()}
}

// RoutingKey returns the broker topic, e.g. "job.deleted"
func (e Event) RoutingKey() string {
	return fmt.Sprintf("%s.%s", e.Entity, e.Action)
}

// Encode returns the JSON wire form
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}

// Decode parses the JSON wire form
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.Entity == "" || e.Action == "" {
		return Event{}, fmt.Errorf("failed to decode event: missing entity or action")
	}
	return e, nil
}

// Publisher delivers events somewhere
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

// Publish delivers e to all publishers, even when some fail
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
