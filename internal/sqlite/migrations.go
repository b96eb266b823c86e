package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id VARCHAR NOT NULL PRIMARY KEY,
		external_id VARCHAR NOT NULL DEFAULT "",
		title VARCHAR NOT NULL,
		description TEXT NOT NULL DEFAULT "",
		starts_at TIMESTAMP NOT NULL,
		ends_at TIMESTAMP NOT NULL,
		all_day BOOLEAN NOT NULL DEFAULT 0,
		source VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS events_external_id ON events (external_id)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		platform VARCHAR NOT NULL PRIMARY KEY,
		auth TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS equipment (
		id VARCHAR NOT NULL PRIMARY KEY,
		name VARCHAR NOT NULL,
		status VARCHAR NOT NULL DEFAULT "free"
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id VARCHAR NOT NULL PRIMARY KEY,
		equipment_id VARCHAR NOT NULL,
		starts_at TIMESTAMP NOT NULL,
		ends_at TIMESTAMP NOT NULL,
		FOREIGN KEY (equipment_id) REFERENCES equipment (id)
	)`,
}
