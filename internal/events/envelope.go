package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventEnvelope is the common wrapper for every published event. The payload
// is generic so each event keeps a typed contract.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      *int64    `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

// EnvelopeMetadata carries correlation/causation context for emitted events.
type EnvelopeMetadata struct {
	CorrelationID string
	CausationID   string
}

// Validate ensures the envelope contains the expected event identity.
func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	return nil
}

type eventType struct {
	name       string
	version    int
	routingKey string
}

func (et eventType) schema() string {
	return fmt.Sprintf("contracts/events/order/%s.v%d.payload.schema.json", et.name, et.version)
}

func newEnvelope[T any](et eventType, partitionKey string, seq int64, meta EnvelopeMetadata, payload T) EventEnvelope[T] {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}
	return EventEnvelope[T]{
		EventName:     et.name,
		EventVersion:  et.version,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producerName,
		PartitionKey:  partitionKey,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        et.schema(),
		Payload:       payload,
	}
}
