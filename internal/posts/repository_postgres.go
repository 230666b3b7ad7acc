package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
)

var _ Medium = (*PostgresMedium)(nil)

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS site_documents (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	version    BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresMedium stores the collection as a single JSONB row keyed by name.
type PostgresMedium struct {
	db  *sql.DB
	key string
}

func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresMedium(db *sql.DB, key string) *PostgresMedium {
	return &PostgresMedium{db: db, key: key}
}

func (m *PostgresMedium) Name() string { return "postgres" }

func (m *PostgresMedium) Init(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, createDocumentsTable)
	return err
}

func (m *PostgresMedium) Read(ctx context.Context) ([]Post, string, error) {
	var (
		body    []byte
		version int64
	)
	err := m.db.QueryRowContext(ctx,
		`SELECT body, version FROM site_documents WHERE key = $1`, m.key,
	).Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNoCollection
	}
	if err != nil {
		return nil, "", fmt.Errorf("select collection: %w", err)
	}

	v := strconv.FormatInt(version, 10)
	list, err := decode(body)
	if err != nil {
		return nil, v, err
	}
	return list, v, nil
}

func (m *PostgresMedium) Write(ctx context.Context, list []Post, version string) error {
	data, err := encode(list)
	if err != nil {
		return err
	}

	var res sql.Result
	if version == "" {
		res, err = m.db.ExecContext(ctx,
			`INSERT INTO site_documents (key, body) VALUES ($1, $2)
			 ON CONFLICT (key) DO NOTHING`,
			m.key, string(data))
	} else {
		expected, convErr := strconv.ParseInt(version, 10, 64)
		if convErr != nil {
			return ErrVersionConflict
		}
		res, err = m.db.ExecContext(ctx,
			`UPDATE site_documents
			 SET body = $2, version = version + 1, updated_at = now()
			 WHERE key = $1 AND version = $3`,
			m.key, string(data), expected)
	}
	if err != nil {
		return fmt.Errorf("store collection: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
