package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/logger"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/storage"
)

const habitColumns = `id, name, frequency, selected_days, always_show, start_date, xp_reward, created_at, archived_at, deleted_at`

func (s *Store) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, selectedDays, createdAt string
	var archivedAt, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.Name, &frequency, &selectedDays, &h.AlwaysShow, &h.StartDate, &h.XPReward,
		&createdAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	h.SelectedDays = decodeDays(selectedDays, h.ID)
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s created_at: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime(archivedAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s archived_at: %w", h.ID, err)
	}
	if h.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s deleted_at: %w", h.ID, err)
	}
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

	completions, err := s.completionsFor(h.ID)
	if err != nil {
		return models.Habit{}, err
	}
	h.Completions = completions
	return h, nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	return s.getHabitWhere("id = ?", id)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	return s.getHabitWhere("name = ?", name)
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

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the connection before the completions query
	rows.Close()

	all, err := s.allCompletions()
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
	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			frequency = excluded.frequency,
			selected_days = excluded.selected_days,
			always_show = excluded.always_show,
			start_date = excluded.start_date,
			xp_reward = excluded.xp_reward,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`,
		habit.ID, habit.Name, string(habit.Frequency), encodeDays(habit.SelectedDays), habit.AlwaysShow,
		habit.StartDate, habit.XPReward, formatTime(habit.CreatedAt), nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt))
	return err
}

// updateHabitState runs a soft-state transition and maps "no row changed" to ErrNotFound.
func (s *Store) updateHabitState(query, id, failure string, args ...any) error {
	result, err := s.db.Exec(query, append(args, id)...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: habit %s %s", storage.ErrNotFound, id, failure)
	}
	return nil
}

func (s *Store) ArchiveHabit(id string) error {
	return s.updateHabitState(
		"UPDATE habits SET archived_at = ? WHERE id = ? AND deleted_at IS NULL AND archived_at IS NULL",
		id, "is missing or already archived", formatTime(time.Now()))
}

func (s *Store) UnarchiveHabit(id string) error {
	return s.updateHabitState(
		"UPDATE habits SET archived_at = NULL WHERE id = ? AND deleted_at IS NULL AND archived_at IS NOT NULL",
		id, "is missing or not archived")
}

func (s *Store) DeleteHabit(id string) error {
	return s.updateHabitState(
		"UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		id, "is missing or already deleted", formatTime(time.Now()))
}

func (s *Store) RestoreHabit(id string) error {
	return s.updateHabitState(
		"UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL",
		id, "is missing or not deleted")
}

func (s *Store) SetHabitCompletion(c models.HabitCompletion) error {
	_, err := s.db.Exec(`
		INSERT INTO habit_completions (habit_id, day, completed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET completed_at = excluded.completed_at`,
		c.HabitID, c.Day, formatTime(c.CompletedAt))
	return err
}

func (s *Store) DeleteHabitCompletion(habitID, day string) error {
	result, err := s.db.Exec("DELETE FROM habit_completions WHERE habit_id = ? AND day = ?", habitID, day)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: no completion for habit %s on %s", storage.ErrNotFound, habitID, day)
	}
	return nil
}

func (s *Store) completionsFor(habitID string) (map[string]bool, error) {
	rows, err := s.db.Query("SELECT day FROM habit_completions WHERE habit_id = ?", habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := make(map[string]bool)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		completions[day] = true
	}
	return completions, rows.Err()
}

func (s *Store) allCompletions() (map[string]map[string]bool, error) {
	rows, err := s.db.Query("SELECT habit_id, day FROM habit_completions")
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

func encodeDays(days models.DayTokens) string {
	if len(days) == 0 {
		return "[]"
	}
	data, err := json.Marshal([]string(days))
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeDays accepts JSON arrays and legacy comma-separated values. Corrupt
// values fail closed to an empty selection.
func decodeDays(raw, id string) models.DayTokens {
	days, err := models.ParseDayTokens(raw)
	if err != nil {
		logger.Warn("Ignoring malformed selected days", "id", id, "error", err)
		return models.DayTokens{}
	}
	return days
}
