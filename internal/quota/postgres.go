package quota

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore keeps usage records in PostgreSQL so quotas survive process
// restarts. The day-rollover reset happens inside single upsert statements,
// so concurrent handlers cannot lose an update.
type PostgresStore struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

func NewPostgresStore(config DatabaseConfig, limit int) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	store := &PostgresStore{db: db, limit: limit, now: time.Now}

	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStore) CheckLimit(ctx context.Context, userID int64) (bool, int, error) {
	today := utcDay(s.now())

	query := `
		INSERT INTO usage_records (user_id, day, count)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET count = CASE WHEN usage_records.day = $2 THEN usage_records.count ELSE 0 END,
		    day = $2
		RETURNING count`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, today).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("error checking usage limit: %v", err)
	}

	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count < s.limit, remaining, nil
}

func (s *PostgresStore) IncrementUsage(ctx context.Context, userID int64) error {
	today := utcDay(s.now())

	query := `
		INSERT INTO usage_records (user_id, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET count = CASE WHEN usage_records.day = $2 THEN usage_records.count + 1 ELSE 1 END,
		    day = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, today); err != nil {
		return fmt.Errorf("error incrementing usage: %v", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
