package kv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"github.com/spf13/afero"
)

// FileStore persists values as a JSON object in a single file. Every call
// re-reads the file so that separate processes see each other's writes.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore writing to path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *FileStore) SetMany(_ context.Context, pairs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	for k, v := range pairs {
		values[k] = v
	}
	return s.save(values)
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return s.save(values)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)

	f, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, oops.Code("STORE_READ_FAILED").With("path", s.path).Wrap(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return nil, oops.Code("STORE_CORRUPT").With("path", s.path).Wrapf(err, "decode state file")
	}
	// A "null" document decodes to a nil map.
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

// save replaces the state file atomically: temp file in the same directory, then rename.
func (s *FileStore) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".state-*.json")
	if err != nil {
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	tmpName := tmp.Name()

	if err := json.NewEncoder(tmp).Encode(values); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := s.fs.Chmod(tmpName, 0o600); err != nil {
		_ = s.fs.Remove(tmpName)
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return oops.Code("STORE_WRITE_FAILED").With("path", s.path).Wrap(err)
	}
	return nil
}
