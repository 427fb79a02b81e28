package constants

import (
	"strings"
	"time"
)

// Frequency is how often a habit or repeating step recurs
type Frequency string

// Normalized lower-cases and trims f, the same way day tokens are compared.
func (f Frequency) Normalized() Frequency {
	return Frequency(strings.ToLower(strings.TrimSpace(string(f))))
}

// OrdinalMode selects how monthly "{ordinal}_{weekday}" tokens are matched
type OrdinalMode string

const (
	AppName            = "pokrok"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/pokrok"
	DefaultConfigFile  = "config.toml"
	DefaultDBName      = "pokrok.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat keys monthly roll-ups (YYYY-MM)
	MonthFormat = "2006-01"

	// YearFormat keys yearly roll-ups (YYYY)
	YearFormat = "2006"

	// MaxOccurrenceScanDays bounds the forward search for the next open occurrence.
	// Pathological schedules (monthly with no days) terminate after a year.
	MaxOccurrenceScanDays = 365

	// Frequencies
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyCustom  Frequency = "custom"
	FrequencyMonthly Frequency = "monthly"

	// Monthly ordinal matching
	OrdinalStrict      OrdinalMode = "strict"
	OrdinalWeekdayOnly OrdinalMode = "weekday-only"

	// Ordinal tokens, as used in "{ordinal}_{weekday}"
	OrdinalFirst  = "first"
	OrdinalSecond = "second"
	OrdinalThird  = "third"
	OrdinalFourth = "fourth"
	OrdinalLast   = "last"

	// OrdinalSeparator joins the ordinal and weekday parts of a monthly token
	OrdinalSeparator = "_"

	// Priority weights
	ImportantWeight = 2
	UrgentWeight    = 1

	// Settings keys
	SettingAccountCreatedAt = "account_created_at"

	// Environment variables
	EnvDB              = "POKROK_DB"
	EnvDBConnection    = "POKROK_DB_CONNECTION"
	EnvTimezone        = "POKROK_TIMEZONE"
	EnvOrdinalMatching = "POKROK_ORDINAL_MATCHING"
	EnvDebug           = "POKROK_DEBUG"
	EnvTestPostgres    = "POKROK_TEST_POSTGRES"

	// Default values
	DefaultTimezone = "Local"

	// Postgres pool
	PostgresMaxOpenConns    = 25
	PostgresMaxIdleConns    = 25
	PostgresConnMaxLifetime = 5 * time.Minute
)

// OrdinalIndex maps ordinal tokens to the weekday occurrence within a month.
// -1 is the last occurrence.
var OrdinalIndex = map[string]int{
	OrdinalFirst:  1,
	OrdinalSecond: 2,
	OrdinalThird:  3,
	OrdinalFourth: 4,
	OrdinalLast:   -1,
}

// WeekdayTokens maps the lowercase English day names used in selected days.
var WeekdayTokens = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}
