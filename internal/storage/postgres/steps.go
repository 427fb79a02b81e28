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

const stepColumns = `id, title, date, completed, completed_at, frequency, selected_days, goal_id,
	is_important, is_urgent, estimated_time, created_at, deleted_at`

func (s *Store) AddStep(step models.Step) error {
	return s.UpdateStep(step)
}

func scanStep(row rowScanner) (models.Step, error) {
	var st models.Step
	var frequency string
	var selectedDays []string
	var completedAt, deletedAt sql.NullTime

	err := row.Scan(&st.ID, &st.Title, &st.Date, &st.Completed, &completedAt, &frequency, pq.Array(&selectedDays),
		&st.GoalID, &st.IsImportant, &st.IsUrgent, &st.EstimatedTime, &st.CreatedAt, &deletedAt)
	if err != nil {
		return models.Step{}, err
	}

	st.Frequency = constants.Frequency(frequency)
	if st.Frequency != "" {
		st.SelectedDays = models.DayTokens(selectedDays)
		if st.SelectedDays == nil {
			st.SelectedDays = models.DayTokens{}
		}
	}
	st.CreatedAt = st.CreatedAt.UTC()
	st.CompletedAt = timePtr(completedAt)
	st.DeletedAt = timePtr(deletedAt)
	return st, nil
}

func (s *Store) GetStep(id string) (models.Step, error) {
	row := s.db.QueryRow("SELECT "+stepColumns+" FROM steps WHERE id = $1 AND deleted_at IS NULL", id)
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
	days := []string(step.SelectedDays)
	if days == nil {
		days = []string{}
	}
	_, err := s.db.Exec(`
		INSERT INTO steps (`+stepColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			date = EXCLUDED.date,
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			frequency = EXCLUDED.frequency,
			selected_days = EXCLUDED.selected_days,
			goal_id = EXCLUDED.goal_id,
			is_important = EXCLUDED.is_important,
			is_urgent = EXCLUDED.is_urgent,
			estimated_time = EXCLUDED.estimated_time,
			deleted_at = EXCLUDED.deleted_at`,
		step.ID, step.Title, step.Date, step.Completed, nullTime(step.CompletedAt), string(step.Frequency),
		pq.Array(days), step.GoalID, step.IsImportant, step.IsUrgent, step.EstimatedTime,
		step.CreatedAt.UTC(), nullTime(step.DeletedAt))
	return err
}

func (s *Store) DeleteStep(id string) error {
	result, err := s.db.Exec("UPDATE steps SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(result, fmt.Sprintf("step %s is missing or already deleted", id))
}
