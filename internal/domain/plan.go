package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPlan = errors.New("invalid plan")

// PlanExample is a minimal valid import payload, shown to users on errors.
const PlanExample = `[{"time":"12:30","text":"Lunch"}]`

type planItem struct {
	Time *string `json:"time"`
	Text *string `json:"text"`
}

// ParsePlan decodes a JSON array of {"time","text"} objects.
// Any other shape rejects the whole payload.
func ParsePlan(raw string) ([]PlanEntry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPlan)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: expected JSON array: %v", ErrInvalidPlan, err)
	}
	if items == nil {
		// "null" decodes into a nil slice without error.
		return nil, fmt.Errorf("%w: expected JSON array", ErrInvalidPlan)
	}

	entries := make([]PlanEntry, 0, len(items))
	for i, rawItem := range items {
		var it planItem
		if err := json.Unmarshal(rawItem, &it); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidPlan, i, err)
		}
		if it.Time == nil || it.Text == nil {
			return nil, fmt.Errorf("%w: item %d: time and text are required", ErrInvalidPlan, i)
		}
		at, err := ParseClock(*it.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidPlan, i, err)
		}
		entries = append(entries, PlanEntry{AtM: at, Text: *it.Text})
	}
	return entries, nil
}
