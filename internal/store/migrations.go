package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Calibration profiles - one threshold pair per exercise mode
		`CREATE TABLE IF NOT EXISTS calibration_profiles (
			mode TEXT PRIMARY KEY,
			down_thresh REAL NOT NULL,
			up_thresh REAL NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Workout sessions - one row per running stretch of a mode
		`CREATE TABLE IF NOT EXISTS workout_sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,

		// Workout reps - one row per counted, scored rep
		`CREATE TABLE IF NOT EXISTS workout_reps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES workout_sessions(id) ON DELETE CASCADE,
			rep_number INTEGER NOT NULL,
			depth_pct REAL NOT NULL,
			tempo_ms INTEGER NOT NULL,
			score REAL NOT NULL,
			verdict TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workout_reps_session_id ON workout_reps(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_workout_sessions_started_at ON workout_sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
