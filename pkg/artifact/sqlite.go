package artifact

import (
	"context"
	"database/sql"
	"embed"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteFileName is the database file used by the sqlite backend.
const SQLiteFileName = "artifacts.db"

var (
	//go:embed sql/*
	ddl embed.FS
)

// SQLitePath returns the database path inside dir.
func SQLitePath(dir string) string { return filepath.Join(dir, SQLiteFileName) }

// SQLiteStore keeps blobs in a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ StoreCloser = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path not specified")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create dir for %s", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	b, err := ddl.ReadFile("sql/sqlite.sql")
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to create database schema in: %s", path)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, kind Kind) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM artifact WHERE kind = ?`, string(kind)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "%s in sqlite", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", kind)
	}
	return blob, nil
}

func (s *SQLiteStore) Save(ctx context.Context, kind Kind, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifact (kind, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (kind) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at
	`, string(kind), blob, time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "upsert %s", kind)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
