package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/storage"
)

const habitColumns = `id, name, frequency, selected_days, always_show, start_date, xp_reward, created_at, archived_at, deleted_at`

func (s *Store) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency string
	var selectedDays []string
	var archivedAt, deletedAt sql.NullTime

	err := row.Scan(&h.ID, &h.Name, &frequency, pq.Array(&selectedDays), &h.AlwaysShow, &h.StartDate,
		&h.XPReward, &h.CreatedAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	h.SelectedDays = models.DayTokens(selectedDays)
	if h.SelectedDays == nil {
		h.SelectedDays = models.DayTokens{}
	}
	h.CreatedAt = h.CreatedAt.UTC()
	h.ArchivedAt = timePtr(archivedAt)
	h.DeletedAt = timePtr(deletedAt)
	return h, nil
}

func (s *Store) getHabitWhere(where string, arg any) (models.Habit, error) {
	row := s.db.QueryRow("SELECT "+habitColumns+" FROM habits WHERE "+where+" AND deleted_at IS NULL", arg)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}

	all, err := s.completions("WHERE habit_id = $1", h.ID)
	if err != nil {
		return models.Habit{}, err
	}
	h.Completions = all[h.ID]
	if h.Completions == nil {
		h.Completions = make(map[string]bool)
	}
	return h, nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	return s.getHabitWhere("id = $1", id)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	return s.getHabitWhere("name = $1", name)
}

func (s *Store) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at, name"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	all, err := s.completions("")
	if err != nil {
		return nil, err
	}
	for i := range habits {
		if c := all[habits[i].ID]; c != nil {
			habits[i].Completions = c
		} else {
			habits[i].Completions = make(map[string]bool)
		}
	}
	return habits, nil
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	days := []string(habit.SelectedDays)
	if days == nil {
		days = []string{}
	}
	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			frequency = EXCLUDED.frequency,
			selected_days = EXCLUDED.selected_days,
			always_show = EXCLUDED.always_show,
			start_date = EXCLUDED.start_date,
			xp_reward = EXCLUDED.xp_reward,
			archived_at = EXCLUDED.archived_at,
			deleted_at = EXCLUDED.deleted_at`,
		habit.ID, habit.Name, string(habit.Frequency), pq.Array(days), habit.AlwaysShow, habit.StartDate,
		habit.XPReward, habit.CreatedAt.UTC(), nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt))
	return err
}

func (s *Store) ArchiveHabit(id string) error {
	result, err := s.db.Exec(
		"UPDATE habits SET archived_at = $1 WHERE id = $2 AND deleted_at IS NULL AND archived_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(result, fmt.Sprintf("habit %s is missing or already archived", id))
}

func (s *Store) UnarchiveHabit(id string) error {
	result, err := s.db.Exec(
		"UPDATE habits SET archived_at = NULL WHERE id = $1 AND deleted_at IS NULL AND archived_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	return requireRow(result, fmt.Sprintf("habit %s is missing or not archived", id))
}

func (s *Store) DeleteHabit(id string) error {
	result, err := s.db.Exec(
		"UPDATE habits SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(result, fmt.Sprintf("habit %s is missing or already deleted", id))
}

func (s *Store) RestoreHabit(id string) error {
	result, err := s.db.Exec(
		"UPDATE habits SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	return requireRow(result, fmt.Sprintf("habit %s is missing or not deleted", id))
}

func (s *Store) SetHabitCompletion(c models.HabitCompletion) error {
	_, err := s.db.Exec(`
		INSERT INTO habit_completions (habit_id, day, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, day) DO UPDATE SET completed_at = EXCLUDED.completed_at`,
		c.HabitID, c.Day, c.CompletedAt.UTC())
	return err
}

func (s *Store) DeleteHabitCompletion(habitID, day string) error {
	result, err := s.db.Exec("DELETE FROM habit_completions WHERE habit_id = $1 AND day = $2", habitID, day)
	if err != nil {
		return err
	}
	return requireRow(result, fmt.Sprintf("no completion for habit %s on %s", habitID, day))
}

// completions groups completion days by habit, optionally filtered by where.
func (s *Store) completions(where string, args ...any) (map[string]map[string]bool, error) {
	rows, err := s.db.Query("SELECT habit_id, day FROM habit_completions "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make(map[string]map[string]bool)
	for rows.Next() {
		var habitID, day string
		if err := rows.Scan(&habitID, &day); err != nil {
			return nil, err
		}
		if all[habitID] == nil {
			all[habitID] = make(map[string]bool)
		}
		all[habitID][day] = true
	}
	return all, rows.Err()
}
