package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RecordID is a store-assigned identifier kept as its raw JSON value, so a
// numeric id stays a number and a uuid stays a string when echoed back.
type RecordID struct {
	raw json.RawMessage
}

// StringID wraps a string id.
func StringID(s string) RecordID {
	b, _ := json.Marshal(s)
	return RecordID{raw: b}
}

// IsZero reports whether the id is absent or null.
func (id RecordID) IsZero() bool {
	return len(id.raw) == 0 || bytes.Equal(id.raw, []byte("null"))
}

// String returns the id without JSON quoting.
func (id RecordID) String() string {
	if id.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

// MarshalJSON implements json.Marshaler.
func (id RecordID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler. Only strings, numbers, and null are accepted.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		id.raw = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return fmt.Errorf("record id must be a string or number, got %s", data)
		}
	}
	id.raw = append(json.RawMessage(nil), data...)
	return nil
}
