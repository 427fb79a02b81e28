package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/storage"
)

const stepColumns = `id, title, date, completed, completed_at, frequency, selected_days, goal_id,
	is_important, is_urgent, estimated_time, created_at, deleted_at`

func (s *Store) AddStep(step models.Step) error {
	return s.UpdateStep(step)
}

func scanStep(row rowScanner) (models.Step, error) {
	var st models.Step
	var frequency, selectedDays, createdAt string
	var completedAt, deletedAt sql.NullString

	err := row.Scan(&st.ID, &st.Title, &st.Date, &st.Completed, &completedAt, &frequency, &selectedDays,
		&st.GoalID, &st.IsImportant, &st.IsUrgent, &st.EstimatedTime, &createdAt, &deletedAt)
	if err != nil {
		return models.Step{}, err
	}

	st.Frequency = constants.Frequency(frequency)
	if st.Frequency != "" {
		st.SelectedDays = decodeDays(selectedDays, st.ID)
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Step{}, fmt.Errorf("step %s created_at: %w", st.ID, err)
	}
	if st.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Step{}, fmt.Errorf("step %s completed_at: %w", st.ID, err)
	}
	if st.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Step{}, fmt.Errorf("step %s deleted_at: %w", st.ID, err)
	}
	return st, nil
}

func (s *Store) GetStep(id string) (models.Step, error) {
	row := s.db.QueryRow("SELECT "+stepColumns+" FROM steps WHERE id = ? AND deleted_at IS NULL", id)
	st, err := scanStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Step{}, storage.ErrNotFound
	}
	return st, err
}

func (s *Store) GetAllSteps(includeDeleted bool) ([]models.Step, error) {
	query := "SELECT " + stepColumns + " FROM steps"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY date, created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []models.Step
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func (s *Store) UpdateStep(step models.Step) error {
	_, err := s.db.Exec(`
		INSERT INTO steps (`+stepColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			frequency = excluded.frequency,
			selected_days = excluded.selected_days,
			goal_id = excluded.goal_id,
			is_important = excluded.is_important,
			is_urgent = excluded.is_urgent,
			estimated_time = excluded.estimated_time,
			deleted_at = excluded.deleted_at`,
		step.ID, step.Title, step.Date, step.Completed, nullTime(step.CompletedAt), string(step.Frequency),
		encodeDays(step.SelectedDays), step.GoalID, step.IsImportant, step.IsUrgent, step.EstimatedTime,
		formatTime(step.CreatedAt), nullTime(step.DeletedAt))
	return err
}

func (s *Store) DeleteStep(id string) error {
	result, err := s.db.Exec("UPDATE steps SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: step %s is missing or already deleted", storage.ErrNotFound, id)
	}
	return nil
}
