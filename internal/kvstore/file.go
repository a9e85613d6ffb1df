package kvstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/log"
)

// File stores all keys in one JSON object, e.g. {"tags": ["prod","db"]}.
// Every Set rewrites the whole file through a temp file and rename.
type File struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// OpenFile loads path if it exists. A missing file is an empty store; the
// directory and file are created on first Set. An unreadable or malformed
// file is logged and also opens empty, so the next Set replaces it.
func OpenFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = log.Discard()
	}
	f := &File{path: path, data: map[string]json.RawMessage{}}
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read config store; starting empty", "path", path, "err", err)
		}
		return f
	}
	if len(b) == 0 {
		return f
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(b, &data); err != nil {
		logger.Warn("malformed config store file; starting empty", "path", path, "err", err)
		return f
	}
	if data != nil {
		f.data = data
	}
	return f
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value, which must be valid JSON.
func (f *File) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return errors.New(errors.CodeInternal, "config store value must be JSON", map[string]any{"key": key})
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = append(json.RawMessage(nil), value...)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) flush() error {
	b, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tagstore-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}
