package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pokrok-app/pokrok/internal/config"
	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/recurrence"
	"github.com/pokrok-app/pokrok/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Engine *recurrence.Engine
	Config config.Config

	// Now overrides the wall clock in tests
	Now func() time.Time
}

// Today returns the current calendar day in the engine's timezone.
func (c *Context) Today() time.Time {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	return c.Engine.Day(now)
}

// DateOrToday parses a YYYY-MM-DD flag value, defaulting to today when empty.
func (c *Context) DateOrToday(value string) (time.Time, error) {
	if value == "" {
		return c.Today(), nil
	}
	day, ok := c.Engine.ParseDay(value)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", value)
	}
	return day, nil
}

var (
	HeadingStyle = lipgloss.NewStyle().Bold(true)
	MutedStyle   = lipgloss.NewStyle().Faint(true)

	classStyles = map[recurrence.DayClass]lipgloss.Style{
		recurrence.DayPerfect:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		recurrence.DayPartial:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		recurrence.DayFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		recurrence.DayNoActivity: lipgloss.NewStyle().Faint(true),
		recurrence.DayFuture:     lipgloss.NewStyle().Faint(true).Italic(true),
	}
)

// RenderClass colors a day classification label.
func RenderClass(class recurrence.DayClass) string {
	style, ok := classStyles[class]
	if !ok {
		return string(class)
	}
	return style.Render(string(class))
}

var weekdayNames = map[string]string{
	"sun": "sunday", "sunday": "sunday",
	"mon": "monday", "monday": "monday",
	"tue": "tuesday", "tuesday": "tuesday",
	"wed": "wednesday", "wednesday": "wednesday",
	"thu": "thursday", "thursday": "thursday",
	"fri": "friday", "friday": "friday",
	"sat": "saturday", "saturday": "saturday",
}

// ParseFrequency validates a frequency flag. An empty value means one-off.
func ParseFrequency(s string) (constants.Frequency, error) {
	f := constants.Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", constants.FrequencyDaily, constants.FrequencyWeekly, constants.FrequencyCustom, constants.FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("invalid frequency: %s (expected daily, weekly, custom or monthly)", s)
	}
}

// ParseDays parses a comma-separated list of selected days for freq.
// Weekly and custom schedules take weekday names ("mon", "friday").
// Monthly schedules take days of the month ("15") or ordinal weekdays
// ("first_monday", "last_fri").
func ParseDays(s string, freq constants.Frequency) (models.DayTokens, error) {
	tokens := models.DayTokens{}
	if strings.TrimSpace(s) == "" {
		switch freq {
		case constants.FrequencyWeekly, constants.FrequencyCustom, constants.FrequencyMonthly:
			return nil, fmt.Errorf("%s schedules need --days", freq)
		}
		return tokens, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		switch freq {
		case constants.FrequencyWeekly, constants.FrequencyCustom:
			name, ok := weekdayNames[part]
			if !ok {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
			tokens = append(tokens, name)
		case constants.FrequencyMonthly:
			token, err := parseMonthlyToken(part)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token)
		default:
			return nil, fmt.Errorf("--days is not used by %q schedules", freq)
		}
	}
	return tokens, nil
}

func parseMonthlyToken(part string) (string, error) {
	if n, err := strconv.Atoi(part); err == nil {
		if n < 1 || n > 31 {
			return "", fmt.Errorf("invalid day of month: %d", n)
		}
		return strconv.Itoa(n), nil
	}
	ordinal, wd, found := strings.Cut(part, constants.OrdinalSeparator)
	if !found {
		return "", fmt.Errorf("invalid monthly day: %s (expected 1-31 or e.g. first_monday)", part)
	}
	if _, ok := constants.OrdinalIndex[ordinal]; !ok {
		return "", fmt.Errorf("invalid ordinal: %s", ordinal)
	}
	name, ok := weekdayNames[wd]
	if !ok {
		return "", fmt.Errorf("invalid weekday: %s", wd)
	}
	return ordinal + constants.OrdinalSeparator + name, nil
}

// FormatSchedule renders a frequency and its selected days for listings.
func FormatSchedule(freq constants.Frequency, days models.DayTokens) string {
	switch freq {
	case "":
		return "once"
	case constants.FrequencyDaily:
		return "daily"
	case constants.FrequencyWeekly, constants.FrequencyCustom, constants.FrequencyMonthly:
		if len(days) == 0 {
			return fmt.Sprintf("%s (no days)", freq)
		}
		return fmt.Sprintf("%s on %s", freq, strings.Join(days.Normalized(), ","))
	default:
		return fmt.Sprintf("unknown (%s)", freq)
	}
}

// CompletionTime is the timestamp recorded when something is completed for
// day: now for today, midday of day otherwise.
func (c *Context) CompletionTime(day time.Time) time.Time {
	if day.Equal(c.Today()) {
		if c.Now != nil {
			return c.Now()
		}
		return time.Now()
	}
	return day.Add(12 * time.Hour)
}
