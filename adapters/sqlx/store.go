package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// Database drivers selectable via Config.Driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"make24/core"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// ErrUserNotFound is returned when a username has no row.
var ErrUserNotFound = errors.New("user not found")

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	cfg := Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
	switch driver {
	case DriverPostgres:
		cfg.DSN = "postgres://localhost:5432/make24?sslmode=disable"
	case DriverMySQL:
		cfg.DSN = "root@tcp(localhost:3306)/make24?parseTime=true"
	case DriverSQLite:
		cfg.DSN = "./data/make24.db"
	}
	return cfg
}

// User is a durable account row. The score column is the write-through target;
// it mirrors the ranked board after each successful increment and is never
// decremented by the scoring core.
type User struct {
	ID           int64         `db:"id"`
	Username     core.Username `db:"username"`
	PasswordHash string        `db:"password"`
	Score        int64         `db:"score"`
	CreatedAt    time.Time     `db:"created_at"`
}

// Store persists user accounts and scores via sqlx.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New opens a connection, applies pool settings, and ensures the schema.
func New(cfg Config) (*Store, error) {
	driverName := string(cfg.Driver)
	db, err := sqlx.Connect(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection (useful for testing).
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the users table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	var ddl string
	switch s.driver {
	case DriverPostgres:
		ddl = `CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			score BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	case DriverMySQL:
		ddl = `CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(30) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			score BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	default:
		ddl = `CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// CreateUser inserts a new account with a zero score and returns its id.
func (s *Store) CreateUser(ctx context.Context, username core.Username, passwordHash string) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		q := s.db.Rebind(`INSERT INTO users (username, password) VALUES (?, ?) RETURNING id`)
		if err := s.db.QueryRowxContext(ctx, q, username, passwordHash).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to create user: %w", err)
		}
		return id, nil
	}
	q := s.db.Rebind(`INSERT INTO users (username, password) VALUES (?, ?)`)
	res, err := s.db.ExecContext(ctx, q, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUser fetches an account row by username.
func (s *Store) GetUser(ctx context.Context, username core.Username) (User, error) {
	var u User
	q := s.db.Rebind(`SELECT id, username, password, score, created_at FROM users WHERE username = ?`)
	if err := s.db.GetContext(ctx, &u, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// PasswordHash returns the stored hash for login checks.
func (s *Store) PasswordHash(ctx context.Context, username core.Username) (string, error) {
	u, err := s.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	return u.PasswordHash, nil
}

// SetScore overwrites the persisted score with an absolute value. The ranked
// board's post-increment value is the source of truth being written through.
func (s *Store) SetScore(ctx context.Context, username core.Username, score int64) error {
	q := s.db.Rebind(`UPDATE users SET score = ? WHERE username = ?`)
	res, err := s.db.ExecContext(ctx, q, score, username)
	if err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetScore returns the persisted score for a username.
func (s *Store) GetScore(ctx context.Context, username core.Username) (int64, error) {
	var score int64
	q := s.db.Rebind(`SELECT score FROM users WHERE username = ?`)
	if err := s.db.GetContext(ctx, &score, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get score: %w", err)
	}
	return score, nil
}

// TopScores returns up to limit users with score > 0, highest first. Ties are
// ordered username ascending to match the ranked boards.
func (s *Store) TopScores(ctx context.Context, limit int) ([]core.RankEntry, error) {
	q := s.db.Rebind(`SELECT username, score FROM users WHERE score > 0 ORDER BY score DESC, username ASC LIMIT ?`)
	var entries []core.RankEntry
	rows, err := s.db.QueryxContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e core.RankEntry
		if err := rows.Scan(&e.Username, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan top scores: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top scores: %w", err)
	}
	return entries, nil
}
