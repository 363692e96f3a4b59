package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/HeartGuard/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Dialect selects driver-specific SQL
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB represents a database connection
type DB struct {
	*sql.DB
	dialect Dialect
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// ConnectTimeout bounds the retries of the initial ping
	ConnectTimeout time.Duration
}

// New creates a new PostgreSQL connection, retrying the first ping with
// exponential backoff while the server comes up
func New(params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = params.ConnectTimeout
	if strategy.MaxElapsedTime == 0 {
		strategy.MaxElapsedTime = 30 * time.Second
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Str("host", params.Host).Msg("Database not ready")
	}

	// Check connection
	if err := backoff.RetryNotify(db.Ping, strategy, notify); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := createTables(db, Postgres); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, dialect: Postgres}, nil
}

// OpenSQLite opens (creating if needed) the SQLite database file at path
func OpenSQLite(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer at a time; pragmas below are per connection
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createTables(db, SQLite); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, dialect: SQLite}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB, dialect Dialect) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	createdAt := "created_at TEXT NOT NULL"
	if dialect == Postgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
		createdAt = "created_at TIMESTAMPTZ NOT NULL"
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS predictions (
			` + idColumn + `,
			age INTEGER NOT NULL,
			sex INTEGER NOT NULL,
			chest_pain_type INTEGER NOT NULL,
			resting_blood_pressure INTEGER NOT NULL,
			cholesterol INTEGER NOT NULL,
			fasting_blood_sugar INTEGER NOT NULL,
			resting_ecg INTEGER NOT NULL,
			max_heart_rate INTEGER NOT NULL,
			exercise_induced_angina INTEGER NOT NULL,
			st_depression REAL NOT NULL,
			st_slope INTEGER NOT NULL,
			major_vessels INTEGER NOT NULL,
			thalassemia INTEGER NOT NULL,
			risk_percentage REAL NOT NULL,
			risk_level TEXT NOT NULL,
			` + createdAt + `
		)
	`)
	if err != nil {
		return fmt.Errorf("create predictions table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at)`)
	if err != nil {
		return fmt.Errorf("create predictions index: %w", err)
	}
	return nil
}

// Dialect reports which driver the connection uses
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) timestampArg(t time.Time) any {
	if db.dialect == Postgres {
		return t.UTC()
	}
	return t.UTC().Format(models.StorageLayout)
}

// Append stores one assessment and returns its id. The record's CreatedAt is
// set to now when zero.
func (db *DB) Append(ctx context.Context, rec *models.AssessmentRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := db.QueryRowContext(ctx, db.rebind(`
		INSERT INTO predictions (
			age, sex, chest_pain_type, resting_blood_pressure,
			cholesterol, fasting_blood_sugar, resting_ecg,
			max_heart_rate, exercise_induced_angina, st_depression,
			st_slope, major_vessels, thalassemia,
			risk_percentage, risk_level, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		*rec.Age, *rec.Sex, *rec.ChestPainType, *rec.RestingBloodPressure,
		*rec.Cholesterol, *rec.FastingBloodSugar, *rec.RestingECG,
		*rec.MaxHeartRate, *rec.ExerciseInducedAngina, *rec.STDepression,
		*rec.STSlope, *rec.MajorVessels, *rec.Thalassemia,
		rec.RiskPercentage, string(rec.RiskLevel), db.timestampArg(rec.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}

	rec.ID = id
	return id, nil
}

// ListRecent returns up to limit records, newest first. limit <= 0 returns all.
func (db *DB) ListRecent(ctx context.Context, limit int) ([]models.AssessmentRecord, error) {
	query := `
		SELECT
			id, age, sex, chest_pain_type, resting_blood_pressure,
			cholesterol, fasting_blood_sugar, resting_ecg,
			max_heart_rate, exercise_induced_angina, st_depression,
			st_slope, major_vessels, thalassemia,
			risk_percentage, risk_level, created_at
		FROM predictions
		ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	records := []models.AssessmentRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (models.AssessmentRecord, error) {
	var (
		rec                              models.AssessmentRecord
		age, sex, cp, bp, chol, fbs, ecg int
		hr, angina, slope, vessels, thal int
		stDepression                     float64
		level                            string
		createdAt                        any
	)
	err := rows.Scan(
		&rec.ID, &age, &sex, &cp, &bp,
		&chol, &fbs, &ecg,
		&hr, &angina, &stDepression,
		&slope, &vessels, &thal,
		&rec.RiskPercentage, &level, &createdAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scan prediction: %w", err)
	}

	rec.ClinicalInput = models.ClinicalInput{
		Age:                   &age,
		Sex:                   &sex,
		ChestPainType:         &cp,
		RestingBloodPressure:  &bp,
		Cholesterol:           &chol,
		FastingBloodSugar:     &fbs,
		RestingECG:            &ecg,
		MaxHeartRate:          &hr,
		ExerciseInducedAngina: &angina,
		STDepression:          &stDepression,
		STSlope:               &slope,
		MajorVessels:          &vessels,
		Thalassemia:           &thal,
	}
	rec.RiskLevel = models.RiskLevel(level)

	switch v := createdAt.(type) {
	case time.Time:
		rec.CreatedAt = v.UTC()
	case string:
		rec.CreatedAt, err = models.ParseTimestamp(v)
	case []byte:
		rec.CreatedAt, err = models.ParseTimestamp(string(v))
	default:
		err = fmt.Errorf("unexpected created_at type %T", createdAt)
	}
	if err != nil {
		return rec, fmt.Errorf("prediction %d: %w", rec.ID, err)
	}
	return rec, nil
}

// ClearAll deletes every record in one transaction and returns how many were removed
func (db *DB) ClearAll(ctx context.Context) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM predictions`)
	if err != nil {
		return 0, fmt.Errorf("delete predictions: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}
	return count, nil
}

// Count returns the number of stored records
func (db *DB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}

// HealthCheck reports whether the database is reachable
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", db.dialect, err)
	}
	return nil
}

// ErrUnknownDriver is returned by Open for a driver other than sqlite or postgres
var ErrUnknownDriver = errors.New("unknown database driver")

// Options selects and configures the backing database
type Options struct {
	Driver     Dialect
	SQLitePath string
	Postgres   ConnectionParams
}

// Open connects to the configured backend
func Open(opts Options) (*DB, error) {
	switch opts.Driver {
	case SQLite, "":
		return OpenSQLite(opts.SQLitePath)
	case Postgres:
		return New(opts.Postgres)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
