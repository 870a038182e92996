package artifact

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresStore keeps blobs in a shared PostgreSQL table so several serving
// replicas can load the same training run.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ StoreCloser = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn and creates the artifact table if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn not specified")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create pgxpool")
	}
	b, err := ddl.ReadFile("sql/postgres.sql")
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "create artifact table")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, kind Kind) ([]byte, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx, `SELECT blob FROM churn_artifact WHERE kind = $1`, string(kind)).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "%s in postgres", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", kind)
	}
	return blob, nil
}

func (s *PostgresStore) Save(ctx context.Context, kind Kind, blob []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO churn_artifact (kind, blob, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (kind) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at
	`, string(kind), blob, time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "upsert %s", kind)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
