package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/statetrace/internal/canonical"
	"github.com/roach88/statetrace/internal/history"
)

// marshalAttributes converts event attributes to canonical JSON TEXT.
// Events without attributes are stored as NULL.
func marshalAttributes(ev history.Event) (*string, error) {
	raw, err := history.EncodeAttributes(ev)
	if err != nil {
		return nil, err
	}
	if history.IsEmpty(raw) {
		return nil, nil
	}
	text, err := canonicalText(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal %s attributes: %w", ev.Type, err)
	}
	return &text, nil
}

// marshalSearchAttributes converts search attributes to canonical JSON TEXT.
func marshalSearchAttributes(attrs map[string]json.RawMessage) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	data, err := canonical.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal search attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalSearchAttributes parses stored search attributes.
// Returns an empty map for an empty object.
func unmarshalSearchAttributes(data string) (map[string]json.RawMessage, error) {
	attrs := make(map[string]json.RawMessage)
	if data == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal search attributes: %w", err)
	}
	return attrs, nil
}

func canonicalText(raw json.RawMessage) (string, error) {
	tree, err := canonical.FromJSON(raw)
	if err != nil {
		return "", err
	}
	data, err := canonical.Encode(tree)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
