package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
)

// day parses a YYYY-MM-DD key at UTC midnight or fails the test
func day(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		t.Fatalf("bad test date %q: %v", key, err)
	}
	return d
}

func utcEngine() *Engine {
	return New(WithLocation(time.UTC))
}

func TestIsScheduledForDay_Weekly(t *testing.T) {
	e := utcEngine()
	habit := models.Habit{
		ID:           "weekly",
		Frequency:    constants.FrequencyWeekly,
		SelectedDays: models.DayTokens{"monday", "wednesday"},
		StartDate:    "2024-01-01",
	}

	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},  // Monday, start boundary
		{"2024-01-03", true},  // Wednesday
		{"2024-01-04", false}, // Thursday
		{"2024-01-07", false}, // Sunday
		{"2024-01-10", true},  // Wednesday
		{"2023-12-27", false}, // Wednesday before start
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := e.IsScheduledForDay(habit, day(t, tt.date)); got != tt.want {
				t.Errorf("IsScheduledForDay(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsScheduledForDay_Daily(t *testing.T) {
	e := utcEngine()
	habit := models.Habit{Frequency: constants.FrequencyDaily, StartDate: "2024-02-10"}

	if e.IsScheduledForDay(habit, day(t, "2024-02-09")) {
		t.Error("daily habit must not be scheduled before its start date")
	}
	for d := day(t, "2024-02-10"); d.Before(day(t, "2024-04-10")); d = d.AddDate(0, 0, 1) {
		if !e.IsScheduledForDay(habit, d) {
			t.Fatalf("daily habit not scheduled on %s", d.Format(constants.DateFormat))
		}
	}
}

func TestIsScheduledForDay_CreatedAtFallback(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	e := New(WithLocation(cet))

	// 23:30 UTC is already the next calendar day in CET
	habit := models.Habit{
		Frequency: constants.FrequencyDaily,
		CreatedAt: time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC),
	}

	if e.IsScheduledForDay(habit, time.Date(2024, 1, 10, 12, 0, 0, 0, cet)) {
		t.Error("habit should not be scheduled before its local creation day")
	}
	if !e.IsScheduledForDay(habit, time.Date(2024, 1, 11, 0, 0, 0, 0, cet)) {
		t.Error("habit should be scheduled on its local creation day")
	}
}

func TestIsScheduledForDay_StartDateOverridesCreatedAt(t *testing.T) {
	e := utcEngine()
	habit := models.Habit{
		Frequency: constants.FrequencyDaily,
		StartDate: "2024-01-01",
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	if !e.IsScheduledForDay(habit, day(t, "2024-02-01")) {
		t.Error("start date should take precedence over created_at")
	}
}

func TestIsScheduledForDay_TimezoneStable(t *testing.T) {
	e := utcEngine()
	habit := models.Habit{
		Frequency:    constants.FrequencyWeekly,
		SelectedDays: models.DayTokens{"wednesday"},
	}

	// Both values are Wednesday 2024-01-03 on their own wall clock
	tokyo := time.Date(2024, 1, 3, 0, 15, 0, 0, time.FixedZone("JST", 9*3600))
	newYork := time.Date(2024, 1, 3, 23, 45, 0, 0, time.FixedZone("EST", -5*3600))

	if !e.IsScheduledForDay(habit, tokyo) {
		t.Error("expected Wednesday in JST to be scheduled")
	}
	if !e.IsScheduledForDay(habit, newYork) {
		t.Error("expected Wednesday in EST to be scheduled")
	}
}

func TestIsScheduledForDay_Monthly(t *testing.T) {
	tests := []struct {
		name string
		days models.DayTokens
		mode constants.OrdinalMode
		date string
		want bool
	}{
		{name: "day of month match", days: models.DayTokens{"15"}, date: "2024-03-15", want: true},
		{name: "day of month miss", days: models.DayTokens{"15"}, date: "2024-03-16", want: false},
		{name: "31st skipped in April", days: models.DayTokens{"31"}, date: "2024-04-30", want: false},
		{name: "29th in leap February", days: models.DayTokens{"29"}, date: "2024-02-29", want: true},
		{name: "first monday", days: models.DayTokens{"first_monday"}, date: "2024-01-01", want: true},
		{name: "second monday is not first", days: models.DayTokens{"first_monday"}, date: "2024-01-08", want: false},
		{name: "second monday", days: models.DayTokens{"second_monday"}, date: "2024-01-08", want: true},
		{name: "last friday", days: models.DayTokens{"last_friday"}, date: "2024-01-26", want: true},
		{name: "fourth friday not last in a five-friday month", days: models.DayTokens{"last_friday"}, date: "2024-01-19", want: false},
		{name: "wrong weekday", days: models.DayTokens{"first_tuesday"}, date: "2024-01-01", want: false},
		{name: "unknown ordinal", days: models.DayTokens{"fifth_monday"}, date: "2024-01-29", want: false},
		{name: "weekday-only mode ignores ordinal", days: models.DayTokens{"first_monday"}, mode: constants.OrdinalWeekdayOnly, date: "2024-01-08", want: true},
		{name: "weekday-only mode still checks weekday", days: models.DayTokens{"first_monday"}, mode: constants.OrdinalWeekdayOnly, date: "2024-01-09", want: false},
		{name: "mixed tokens", days: models.DayTokens{"1", "last_wednesday"}, date: "2024-01-31", want: true},
		{name: "case and space insensitive", days: models.DayTokens{" First_Monday "}, date: "2024-01-01", want: true},
		{name: "empty selection", days: models.DayTokens{}, date: "2024-01-01", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithLocation(time.UTC), WithOrdinalMatching(tt.mode))
			habit := models.Habit{Frequency: constants.FrequencyMonthly, SelectedDays: tt.days}
			if got := e.IsScheduledForDay(habit, day(t, tt.date)); got != tt.want {
				t.Errorf("IsScheduledForDay(%v, %s) = %v, want %v", tt.days, tt.date, got, tt.want)
			}
		})
	}
}

func TestIsScheduledForDay_Custom(t *testing.T) {
	e := utcEngine()
	habit := models.Habit{
		Frequency:    constants.FrequencyCustom,
		SelectedDays: models.DayTokens{"Saturday", "sunday"},
	}
	if !e.IsScheduledForDay(habit, day(t, "2024-06-01")) {
		t.Error("expected Saturday to be scheduled")
	}
	if e.IsScheduledForDay(habit, day(t, "2024-06-03")) {
		t.Error("expected Monday not to be scheduled")
	}
}

func TestIsScheduledForDay_FailsClosed(t *testing.T) {
	e := utcEngine()
	date := day(t, "2024-01-03")

	tests := []struct {
		name  string
		habit models.Habit
	}{
		{name: "unknown frequency", habit: models.Habit{Frequency: "fortnightly", SelectedDays: models.DayTokens{"wednesday"}}},
		{name: "missing frequency", habit: models.Habit{SelectedDays: models.DayTokens{"wednesday"}}},
		{name: "malformed start date", habit: models.Habit{Frequency: constants.FrequencyDaily, StartDate: "01/01/2024"}},
		{name: "weekly without days", habit: models.Habit{Frequency: constants.FrequencyWeekly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e.IsScheduledForDay(tt.habit, date) {
				t.Error("expected malformed habit not to be scheduled")
			}
		})
	}
}

func TestIsScheduledForDay_MalformedSelectedDaysJSON(t *testing.T) {
	e := utcEngine()

	var habit models.Habit
	data := []byte(`{"id":"h1","frequency":"monthly","selected_days":"{not json"}`)
	if err := json.Unmarshal(data, &habit); err != nil {
		t.Fatalf("decoding should not fail on malformed selected days: %v", err)
	}

	for d := day(t, "2024-01-01"); d.Before(day(t, "2024-03-01")); d = d.AddDate(0, 0, 1) {
		if e.IsScheduledForDay(habit, d) {
			t.Fatalf("malformed monthly habit scheduled on %s", d.Format(constants.DateFormat))
		}
	}
}

func TestIsScheduledForDay_AlwaysShowDoesNotSchedule(t *testing.T) {
	e := utcEngine()
	habit := models.Habit{
		Frequency:    constants.FrequencyWeekly,
		SelectedDays: models.DayTokens{"monday"},
		AlwaysShow:   true,
	}
	tuesday := day(t, "2024-01-02")

	if e.IsScheduledForDay(habit, tuesday) {
		t.Error("always-show must not make a habit scheduled")
	}
	if !e.VisibleOn(habit, tuesday) {
		t.Error("always-show habit should be visible on unscheduled days")
	}
}

func TestIsScheduledForDay_Steps(t *testing.T) {
	e := utcEngine()

	oneOff := models.Step{ID: "s1", Date: "2024-05-01"}
	if !e.IsScheduledForDay(oneOff, day(t, "2024-05-01")) {
		t.Error("one-off step should be scheduled on its date")
	}
	if e.IsScheduledForDay(oneOff, day(t, "2024-05-02")) {
		t.Error("one-off step should only be scheduled on its date")
	}
	if e.IsScheduledForDay(models.Step{ID: "undated"}, day(t, "2024-05-01")) {
		t.Error("undated one-off step should never be scheduled")
	}

	repeating := models.Step{
		ID:           "s2",
		Date:         "2024-05-01",
		Frequency:    constants.FrequencyWeekly,
		SelectedDays: models.DayTokens{"friday"},
	}
	if e.IsScheduledForDay(repeating, day(t, "2024-04-26")) {
		t.Error("repeating step should not be scheduled before its date")
	}
	if !e.IsScheduledForDay(repeating, day(t, "2024-05-03")) {
		t.Error("repeating step should be scheduled on a selected day after its date")
	}
}

func TestIsNthWeekdayOfMonth(t *testing.T) {
	tests := []struct {
		date       string
		weekday    time.Weekday
		occurrence int
		want       bool
	}{
		{"2024-01-01", time.Monday, 1, true},
		{"2024-01-29", time.Monday, 5, true},
		{"2024-01-29", time.Monday, -1, true},
		{"2024-01-22", time.Monday, -1, false},
		{"2024-01-22", time.Monday, 4, true},
		{"2024-01-22", time.Tuesday, 4, false},
		{"2024-01-22", time.Monday, 0, false},
		{"2024-01-22", time.Monday, 6, false},
	}

	for _, tt := range tests {
		if got := isNthWeekdayOfMonth(day(t, tt.date), tt.weekday, tt.occurrence); got != tt.want {
			t.Errorf("isNthWeekdayOfMonth(%s, %v, %d) = %v, want %v", tt.date, tt.weekday, tt.occurrence, got, tt.want)
		}
	}
}

func TestIsScheduledForDay_FrequencyCase(t *testing.T) {
	e := utcEngine()
	wed := day(t, "2024-01-03")

	habit := models.Habit{Frequency: " Weekly", SelectedDays: models.DayTokens{"Wednesday"}}
	if !e.IsScheduledForDay(habit, wed) {
		t.Error("expected mixed-case weekly habit to be scheduled on Wednesday")
	}
	if e.IsScheduledForDay(habit, day(t, "2024-01-04")) {
		t.Error("expected mixed-case weekly habit not to be scheduled on Thursday")
	}

	step := models.Step{Date: "2024-01-01", Frequency: "DAILY"}
	if !e.IsScheduledForDay(step, wed) {
		t.Error("expected upper-case daily step to repeat")
	}
}
