package storage

import (
	"errors"
	"time"

	"github.com/pokrok-app/pokrok/internal/models"
)

// ErrNotFound is returned when a habit or step does not exist (or is deleted).
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits. Returned habits carry their completions.
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Habit completions
	SetHabitCompletion(models.HabitCompletion) error
	DeleteHabitCompletion(habitID, day string) error

	// Steps
	AddStep(models.Step) error
	GetStep(id string) (models.Step, error)
	GetAllSteps(includeDeleted bool) ([]models.Step, error)
	UpdateStep(models.Step) error
	DeleteStep(id string) error

	// Account
	GetAccountCreatedAt() (time.Time, error)

	// Migrations
	SchemaStatus() (current, latest int, err error)
	Migrate(logFn func(string)) (int, error)

	// Utils
	GetConfigPath() string
}
