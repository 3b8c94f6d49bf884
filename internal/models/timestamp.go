package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time accepted from clients either as RFC 3339 or as a
// plain YYYY-MM-DD date.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// UnmarshalJSON accepts RFC 3339, YYYY-MM-DD or null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("invalid timestamp %q: use RFC 3339 or YYYY-MM-DD", raw)
}

// MarshalJSON writes RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}
