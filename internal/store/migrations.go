package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Projects table - stores saved canvases with their brush setup
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			canvas BLOB NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			brush_color TEXT NOT NULL DEFAULT 'red',
			brush_size INTEGER NOT NULL DEFAULT 5,
			brush_opacity REAL NOT NULL DEFAULT 1.0,
			eraser_radius INTEGER NOT NULL DEFAULT 15,
			autosave INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_projects_autosave ON projects(autosave, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
