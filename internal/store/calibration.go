package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/repcoach/internal/exercise"
)

// CalibrationRepository persists per-mode rep thresholds.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibration returns the calibration repository for this store.
func (s *Store) Calibration() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Load returns the stored calibration profile. Modes without a stored
// row fall back to the built-in defaults, so the result always covers
// every mode.
func (r *CalibrationRepository) Load() (exercise.Profile, error) {
	profile := exercise.DefaultProfile()

	rows, err := r.db.Query(`SELECT mode, down_thresh, up_thresh FROM calibration_profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var modeName string
		var down, up float64
		if err := rows.Scan(&modeName, &down, &up); err != nil {
			return nil, err
		}
		mode, err := exercise.ParseMode(modeName)
		if err != nil {
			// An unknown mode name in the table is stale data from an
			// older build; skip it rather than fail the load.
			continue
		}
		profile[mode] = exercise.Thresholds{Down: down, Up: up}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Save upserts the thresholds for one mode.
func (r *CalibrationRepository) Save(mode exercise.Mode, th exercise.Thresholds) error {
	_, err := r.db.Exec(
		`INSERT INTO calibration_profiles (mode, down_thresh, up_thresh, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(mode) DO UPDATE SET
		   down_thresh = excluded.down_thresh,
		   up_thresh = excluded.up_thresh,
		   updated_at = excluded.updated_at`,
		mode.String(), th.Down, th.Up, time.Now(),
	)
	return err
}

// SaveProfile upserts every mode of the profile.
func (r *CalibrationRepository) SaveProfile(p exercise.Profile) error {
	for mode, th := range p {
		if err := r.Save(mode, th); err != nil {
			return err
		}
	}
	return nil
}
