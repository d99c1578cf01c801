// Package progress defines the lifecycle events emitted by the scrape
// pipeline and the stream abstraction carrying them to a consumer.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

// Type tags the event union.
type Type string

// Supported event types. Complete and Error are terminal: a scrape emits
// exactly one of them, always last.
const (
	TypeProgress Type = "progress"
	TypeProduct  Type = "product"
	TypeComplete Type = "complete"
	TypeError    Type = "error"
)

// Event is one message on the progress stream. Exactly the fields relevant
// to its Type are populated; the rest marshal away via omitempty so the wire
// payload is {type, ...payload}.
type Event struct {
	Type    Type      `json:"type"`
	JobID   string    `json:"job_id,omitempty"`
	TS      time.Time `json:"ts,omitzero"`
	Message string    `json:"message,omitempty"`
	Product *scraper.ProductRecord `json:"product,omitempty"`
	// CSV carries the serialized product table on the complete event.
	CSV string `json:"csv,omitempty"`
	// Archive carries the base64-encoded zip on the complete event.
	Archive string `json:"archive,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == TypeComplete || e.Type == TypeError
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	switch e.Type {
	case TypeProgress:
		if e.Message == "" {
			return errors.New("progress event requires a message")
		}
	case TypeProduct:
		if e.Product == nil {
			return errors.New("product event requires a product")
		}
	case TypeComplete:
	case TypeError:
		if e.Message == "" {
			return errors.New("error event requires a message")
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}
