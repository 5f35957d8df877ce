package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Calculations table - one row per completed calculation
		`CREATE TABLE IF NOT EXISTS calculations (
			id TEXT PRIMARY KEY,
			operand_a INTEGER NOT NULL,
			operator TEXT NOT NULL CHECK(operator IN ('+', '-', '*', '/')),
			operand_b INTEGER NOT NULL,
			result TEXT NOT NULL,
			result_value REAL,
			is_error INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_calculations_created_at ON calculations(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
