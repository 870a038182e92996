// Package artifact persists the blobs produced by training (model,
// preprocessor, reference dataset) and watches them for replacement.
package artifact

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Kind names a stored blob.
type Kind string

const (
	KindModel            Kind = "model"
	KindPreprocessor     Kind = "preprocessor"
	KindReferenceDataset Kind = "reference_dataset"
)

// FileName is the name a kind is stored under in a directory.
func (k Kind) FileName() string {
	if k == KindReferenceDataset {
		return string(k) + ".csv"
	}
	return string(k) + ".gob"
}

// ErrNotFound is returned by Load when no blob of the kind was saved.
var ErrNotFound = errors.New("artifact not found")

// Store loads and saves whole blobs by kind. Save replaces any previous blob.
type Store interface {
	Load(ctx context.Context, kind Kind) ([]byte, error)
	Save(ctx context.Context, kind Kind, blob []byte) error
}

// StoreCloser is a Store holding resources that must be released.
type StoreCloser interface {
	Store
	io.Closer
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open returns the Store for backend. dir is the artifact directory for the
// file backend and holds the database file for sqlite; dsn is only used by
// postgres.
func Open(ctx context.Context, backend, dir, dsn string) (StoreCloser, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(ctx, SQLitePath(dir))
	case BackendPostgres:
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, errors.Errorf("unknown artifact backend %q", backend)
	}
}
