package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is an exported workflow history as stored on disk.
type Document struct {
	WorkflowID string `json:"workflow_id" yaml:"workflow_id"`

	// RunID is optional; the store assigns a UUIDv7 when it is empty.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// WorkflowType is the backend workflow type (the interpreter type, not the
	// user-facing state workflow type, which lives in the search attributes).
	WorkflowType string `json:"workflow_type" yaml:"workflow_type"`

	// Status is the backend execution status code, numeric or enum name.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	SearchAttributes map[string]any  `json:"search_attributes,omitempty" yaml:"search_attributes,omitempty"`
	Events           []DocumentEvent `json:"events" yaml:"events"`
}

// DocumentEvent is a single history entry in a Document.
type DocumentEvent struct {
	EventID    int64          `json:"event_id" yaml:"event_id"`
	EventType  string         `json:"event_type" yaml:"event_type"`
	EventTime  string         `json:"event_time" yaml:"event_time"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// LoadDocument reads a history document. Files ending in .json are decoded as
// JSON, everything else as YAML. Unknown fields are rejected in both cases.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML history document.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse YAML history: %w", err)
	}
	return &doc, nil
}

// ParseJSON decodes a JSON history document.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse JSON history: %w", err)
	}
	return &doc, nil
}

// Events converts the document entries into typed events, in document order.
// Event ids must strictly increase, so document order matches the event_id
// order the store reads back.
func (d *Document) Events() ([]Event, error) {
	events := make([]Event, 0, len(d.Events))
	for i, de := range d.Events {
		if i > 0 && de.EventID <= d.Events[i-1].EventID {
			return nil, &DecodeError{
				EventIndex: i,
				EventType:  EventType(de.EventType),
				Field:      "event_id",
				Err:        fmt.Errorf("%w: %d follows %d", ErrEventOrder, de.EventID, d.Events[i-1].EventID),
			}
		}
		ev, err := de.toEvent()
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// RawSearchAttributes returns each search attribute as raw JSON.
func (d *Document) RawSearchAttributes() (map[string]json.RawMessage, error) {
	raw := make(map[string]json.RawMessage, len(d.SearchAttributes))
	for k, v := range d.SearchAttributes {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("search attribute %q: %w", k, err)
		}
		raw[k] = data
	}
	return raw, nil
}

// StartTime returns the time of the first event, or the zero time.
func (d *Document) StartTime() time.Time {
	if len(d.Events) == 0 {
		return time.Time{}
	}
	t, err := ParseEventTime(d.Events[0].EventTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (de DocumentEvent) toEvent() (Event, error) {
	t, err := ParseEventTime(de.EventTime)
	if err != nil {
		return Event{}, err
	}
	ev := Event{
		ID:   de.EventID,
		Type: EventType(de.EventType),
		Time: t,
	}

	var raw json.RawMessage
	if de.Attributes != nil {
		raw, err = json.Marshal(de.Attributes)
		if err != nil {
			return Event{}, fmt.Errorf("encode attributes: %w", err)
		}
	}
	if err := DecodeAttributes(&ev, raw); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// ParseEventTime parses an RFC 3339 event timestamp.
func ParseEventTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event_time %q: %w", s, err)
	}
	return t.UTC(), nil
}
