package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// DateFormatError reports a due_date that is neither RFC 3339 nor YYYY-MM-DD.
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("due_date %q must be RFC 3339 or YYYY-MM-DD", e.Value)
}

// OptionalDate tells an absent JSON key apart from an explicit null.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

func (d *OptionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	d.Value = nil

	if string(b) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return &DateFormatError{Value: string(b)}
	}
	if raw == "" {
		return nil
	}

	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &DateFormatError{Value: raw}
}
