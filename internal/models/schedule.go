package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/logger"
)

// Schedule is the recurrence-relevant view of a habit or step.
type Schedule struct {
	Frequency    constants.Frequency
	SelectedDays DayTokens
	StartDate    string    // YYYY-MM-DD, takes precedence over CreatedAt
	CreatedAt    time.Time // instant; its local calendar day is the fallback start
	Once         string    // YYYY-MM-DD for one-off items without a frequency
}

// DayTokens is the set of day tokens selected for a recurring item:
// weekday names ("monday"), days of month ("15") or ordinal weekdays ("first_monday").
type DayTokens []string

// Contains reports whether token is selected, ignoring case and surrounding space.
func (d DayTokens) Contains(token string) bool {
	token = normalizeToken(token)
	for _, t := range d {
		if normalizeToken(t) == token {
			return true
		}
	}
	return false
}

// Normalized returns the tokens lowercased and trimmed, dropping empties.
func (d DayTokens) Normalized() DayTokens {
	out := make(DayTokens, 0, len(d))
	for _, t := range d {
		if n := normalizeToken(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// String renders the tokens comma-separated.
func (d DayTokens) String() string {
	return strings.Join(d, ",")
}

// UnmarshalJSON accepts a JSON array, a JSON string holding an encoded array,
// or a comma-separated string. Anything else decodes to an empty set so one
// corrupt record never aborts decoding of a whole snapshot.
func (d *DayTokens) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*d = DayTokens(arr)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		tokens, err := ParseDayTokens(raw)
		if err != nil {
			logger.Warn("Ignoring malformed selected days", "value", raw, "error", err)
			*d = DayTokens{}
			return nil
		}
		*d = tokens
		return nil
	}

	if strings.TrimSpace(string(data)) != "null" {
		logger.Warn("Ignoring malformed selected days", "value", string(data))
	}
	*d = DayTokens{}
	return nil
}

// ParseDayTokens parses the textual forms selected days are persisted in:
// a JSON-encoded array ("[\"monday\"]") or a comma-separated list ("monday,friday").
func ParseDayTokens(raw string) (DayTokens, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DayTokens{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return nil, fmt.Errorf("invalid selected days %q: %w", raw, err)
		}
		return DayTokens(arr), nil
	}

	if strings.ContainsAny(raw, "{}\"") {
		return nil, fmt.Errorf("invalid selected days %q", raw)
	}

	var tokens DayTokens
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens, nil
}

func normalizeToken(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
