// Package kvstore is the persistent key/value store for non-secret data
// (the tag list). Values are opaque bytes; callers own the encoding.
package kvstore

import (
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/log"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = stderrors.New("key not found")

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Store is a minimal persistent key/value store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open opens the store for driver at path. An empty driver means DriverFile.
// Only configuration mistakes are errors: a sqlite database that cannot be
// opened is logged and replaced by a store whose reads and writes report
// the open failure.
func Open(driver, path string, logger *slog.Logger) (Store, *errors.XError) {
	if logger == nil {
		logger = log.Discard()
	}
	if path == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "config store path is required", nil)
	}
	switch strings.ToLower(driver) {
	case "", DriverFile:
		return OpenFile(path, logger), nil
	case DriverSQLite:
		s, xe := OpenSQLite(path)
		if xe != nil {
			logger.Warn("config store unavailable; starting empty", "driver", DriverSQLite, "path", path, "err", xe)
			return unavailable{err: xe}, nil
		}
		return s, nil
	default:
		return nil, errors.New(errors.CodeCfgInvalid, "unsupported config store driver", map[string]any{"driver": driver})
	}
}

// unavailable stands in for a backend that failed to open.
type unavailable struct {
	err error
}

func (u unavailable) Get(string) ([]byte, error) { return nil, u.err }
func (u unavailable) Set(string, []byte) error { return u.err }
func (u unavailable) Delete(string) error { return u.err }
func (u unavailable) Close() error { return nil }

// DefaultPath returns the default store location under dir for driver.
func DefaultPath(dir, driver string) string {
	if strings.ToLower(driver) == DriverSQLite {
		return filepath.Join(dir, "minke.db")
	}
	return filepath.Join(dir, "tagStore.json")
}
