package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/natefinch/atomic"

	"github.com/pokrok-app/pokrok/internal/logger"
	"github.com/pokrok-app/pokrok/internal/models"
	"github.com/pokrok-app/pokrok/internal/utils"
)

// SnapshotVersion is the current snapshot document format.
const SnapshotVersion = 1

// Snapshot is the JSON document of habits and steps exchanged with the web app.
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Habits     []models.Habit `json:"habits"`
	Steps      []models.Step  `json:"steps"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Habits      int
	Completions int
	Steps       int
}

// ExportSnapshot writes every habit and step, deleted and archived included,
// to path. The file is replaced atomically.
func ExportSnapshot(p Provider, path string) (Snapshot, error) {
	habits, err := p.GetAllHabits(true, true)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read habits: %w", err)
	}
	steps, err := p.GetAllSteps(true)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read steps: %w", err)
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Habits:     habits,
		Steps:      steps,
	}
	if snap.Habits == nil {
		snap.Habits = []models.Habit{}
	}
	if snap.Steps == nil {
		snap.Steps = []models.Step{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return Snapshot{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return snap, nil
}

// ReadSnapshot decodes a snapshot file. Malformed selected days inside a
// record decode to an empty set rather than failing the whole file.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	if snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	return snap, nil
}

// ImportSnapshot upserts the snapshot's habits, their completions and steps.
// Completion keys that are not YYYY-MM-DD dates are skipped.
func ImportSnapshot(p Provider, snap Snapshot) (ImportResult, error) {
	var res ImportResult
	now := time.Now().UTC()

	for _, h := range snap.Habits {
		if h.ID == "" {
			return res, fmt.Errorf("habit %q has no id", h.Name)
		}
		if h.CreatedAt.IsZero() {
			h.CreatedAt = now
		}
		if err := p.UpdateHabit(h); err != nil {
			return res, fmt.Errorf("failed to import habit %s: %w", h.ID, err)
		}
		res.Habits++

		days := make([]string, 0, len(h.Completions))
		for day := range h.Completions {
			days = append(days, day)
		}
		slices.Sort(days)

		for _, day := range days {
			if !utils.ValidateDate(day) {
				logger.Warn("Skipping malformed completion date", "habit", h.ID, "day", day)
				continue
			}
			if !h.Completions[day] {
				if err := p.DeleteHabitCompletion(h.ID, day); err != nil && !errors.Is(err, ErrNotFound) {
					return res, fmt.Errorf("failed to clear completion %s/%s: %w", h.ID, day, err)
				}
				continue
			}
			c := models.HabitCompletion{HabitID: h.ID, Day: day, CompletedAt: now}
			if err := p.SetHabitCompletion(c); err != nil {
				return res, fmt.Errorf("failed to import completion %s/%s: %w", h.ID, day, err)
			}
			res.Completions++
		}
	}

	for _, s := range snap.Steps {
		if s.ID == "" {
			return res, fmt.Errorf("step %q has no id", s.Title)
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if err := p.UpdateStep(s); err != nil {
			return res, fmt.Errorf("failed to import step %s: %w", s.ID, err)
		}
		res.Steps++
	}

	return res, nil
}
