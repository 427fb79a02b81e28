package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictUnknownFrequency   ConflictType = "unknown_frequency"
	ConflictMissingDays        ConflictType = "missing_days"
	ConflictUnknownDayToken    ConflictType = "unknown_day_token"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
)

// Conflict is one problem that makes a schedule never, or only partially, match.
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // names of the habits or steps involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks stored habits and steps for schedules the engine would
// silently treat as never due.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks the schedules and completion keys of active habits
// and flags duplicate names.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	var result ValidationResult
	seen := make(map[string]bool)

	for _, h := range habits {
		if h.DeletedAt != nil {
			continue
		}
		label := fmt.Sprintf("habit %q", h.Name)

		key := strings.ToLower(strings.TrimSpace(h.Name))
		if seen[key] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("%s: duplicate name", label),
				Items:       []string{h.Name},
			})
		}
		seen[key] = true

		if h.Frequency.Normalized() == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownFrequency,
				Description: fmt.Sprintf("%s: no frequency", label),
				Items:       []string{h.Name},
			})
		} else {
			result.Conflicts = append(result.Conflicts, v.validateSchedule(label, h.Name, h.Schedule())...)
		}

		for day := range h.Completions {
			if !utils.ValidateDate(day) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidDate,
					Description: fmt.Sprintf("%s: invalid completion date %q", label, day),
					Items:       []string{h.Name},
				})
			}
		}
	}
	return result
}

// ValidateSteps checks step dates and the schedules of repeating steps.
func (v *Validator) ValidateSteps(steps []models.Step) ValidationResult {
	var result ValidationResult
	for _, s := range steps {
		if s.DeletedAt != nil {
			continue
		}
		label := fmt.Sprintf("step %q", s.Title)
		if s.Repeating() {
			result.Conflicts = append(result.Conflicts, v.validateSchedule(label, s.Title, s.Schedule())...)
		} else if s.Date != "" && !utils.ValidateDate(s.Date) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("%s: invalid date %q", label, s.Date),
				Items:       []string{s.Title},
			})
		}
	}
	return result
}

// ValidateSchedule checks a single recurring schedule.
func (v *Validator) ValidateSchedule(s models.Schedule) []Conflict {
	return v.validateSchedule("schedule", "", s)
}

func (v *Validator) validateSchedule(label, item string, s models.Schedule) []Conflict {
	var conflicts []Conflict
	add := func(t ConflictType, format string, args ...any) {
		var items []string
		if item != "" {
			items = []string{item}
		}
		conflicts = append(conflicts, Conflict{
			Type:        t,
			Description: label + ": " + fmt.Sprintf(format, args...),
			Items:       items,
		})
	}

	if s.StartDate != "" && !utils.ValidateDate(s.StartDate) {
		add(ConflictInvalidDate, "invalid start date %q", s.StartDate)
	}

	tokens := s.SelectedDays.Normalized()
	switch s.Frequency.Normalized() {
	case constants.FrequencyDaily:
	case constants.FrequencyWeekly, constants.FrequencyCustom:
		if len(tokens) == 0 {
			add(ConflictMissingDays, "%s schedule has no selected days", s.Frequency)
		}
		for _, token := range tokens {
			if _, ok := constants.WeekdayTokens[token]; !ok {
				add(ConflictUnknownDayToken, "unknown weekday %q", token)
			}
		}
	case constants.FrequencyMonthly:
		if len(tokens) == 0 {
			add(ConflictMissingDays, "monthly schedule has no selected days")
		}
		for _, token := range tokens {
			if !ValidMonthlyToken(token) {
				add(ConflictUnknownDayToken, "unknown monthly day %q", token)
			}
		}
	default:
		add(ConflictUnknownFrequency, "unknown frequency %q", s.Frequency)
	}
	return conflicts
}

// ValidMonthlyToken reports whether token is a day of the month ("15") or
// an ordinal weekday ("last_friday").
func ValidMonthlyToken(token string) bool {
	if n, err := strconv.Atoi(token); err == nil {
		return n >= 1 && n <= 31
	}
	ordinal, wd, found := strings.Cut(token, constants.OrdinalSeparator)
	if !found {
		return false
	}
	_, okOrdinal := constants.OrdinalIndex[ordinal]
	_, okWeekday := constants.WeekdayTokens[wd]
	return okOrdinal && okWeekday
}
