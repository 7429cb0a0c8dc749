package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	// postgres driver
	_ "github.com/lib/pq"

	"github.com/dshills/forgereview/internal/forge"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps the history in the reviews table.
type PostgresStore struct {
	db  *sqlx.DB
	log zerolog.Logger
	now func() time.Time
}

type reviewRow struct {
	ID           int64     `db:"id"`
	CreatedAt    time.Time `db:"created_at"`
	PRURL        string    `db:"pr_url"`
	Provider     string    `db:"provider"`
	Title        string    `db:"title"`
	Review       string    `db:"review"`
	ChangedFiles int       `db:"changed_files"`
}

func (r reviewRow) record() Record {
	return Record{
		Timestamp:    timestamp(r.CreatedAt),
		PRURL:        r.PRURL,
		Provider:     forge.Kind(r.Provider),
		Title:        r.Title,
		Review:       r.Review,
		ChangedFiles: r.ChangedFiles,
	}
}

// OpenPostgres connects to dsn and applies any pending migrations.
func OpenPostgres(ctx context.Context, dsn string, log zerolog.Logger) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := &PostgresStore{db: db, log: log, now: time.Now}

	log.Debug().Msg("running database migrations")
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(s.db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	_, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return errors.New("database is in dirty state; fix it with 'migrate force <version>'")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Load returns the newest MaxRecords reviews.
func (s *PostgresStore) Load(ctx context.Context) (History, error) {
	var rows []reviewRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, created_at, pr_url, provider, title, review, changed_files
		FROM reviews
		ORDER BY id DESC
		LIMIT $1`, MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("loading review history: %w", err)
	}
	h := make(History, len(rows))
	for i, row := range rows {
		h[i] = row.record()
	}
	return h, nil
}

// Append inserts r and prunes rows beyond MaxRecords in one transaction. The
// table lock serializes concurrent appenders across processes.
func (s *PostgresStore) Append(ctx context.Context, r Record) (Record, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `LOCK TABLE reviews IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return Record{}, fmt.Errorf("locking reviews: %w", err)
	}

	row := reviewRow{
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
		PRURL:        r.PRURL,
		Provider:     string(r.Provider),
		Title:        r.Title,
		Review:       r.Review,
		ChangedFiles: r.ChangedFiles,
	}
	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO reviews (created_at, pr_url, provider, title, review, changed_files)
		VALUES (:created_at, :pr_url, :provider, :title, :review, :changed_files)
		RETURNING id`)
	if err != nil {
		return Record{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	if err := stmt.GetContext(ctx, &row.ID, row); err != nil {
		return Record{}, fmt.Errorf("inserting review: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM reviews
		WHERE id NOT IN (SELECT id FROM reviews ORDER BY id DESC LIMIT $1)`, MaxRecords); err != nil {
		return Record{}, fmt.Errorf("pruning review history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("committing review: %w", err)
	}
	return row.record(), nil
}

// Stats computes statistics over the stored history.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	h, err := s.Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(h), nil
}
