package artifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore keeps one file per kind in a directory.
type FileStore struct {
	Dir string
}

var _ StoreCloser = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("artifact dir not specified")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create artifact dir %s", dir)
	}
	return &FileStore{Dir: dir}, nil
}

// Path is the file a kind is stored in.
func (s *FileStore) Path(kind Kind) string {
	return filepath.Join(s.Dir, kind.FileName())
}

func (s *FileStore) Load(_ context.Context, kind Kind) ([]byte, error) {
	b, err := os.ReadFile(s.Path(kind))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s in %s", kind, s.Dir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", kind)
	}
	return b, nil
}

// Save writes to a hidden temp file and renames it into place so readers
// never see a partial blob.
func (s *FileStore) Save(_ context.Context, kind Kind, blob []byte) error {
	tmp, err := os.CreateTemp(s.Dir, "."+kind.FileName()+".*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", kind)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", kind)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", kind)
	}
	if err := os.Rename(tmp.Name(), s.Path(kind)); err != nil {
		return errors.Wrapf(err, "rename %s", kind)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
