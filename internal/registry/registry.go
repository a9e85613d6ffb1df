// Package registry holds the process-wide server registry: the ordered
// server list, the tag set, and the rules for mutating, persisting and
// importing them.
//
// The server list is persisted as one JSON blob under KeyServers in the
// secret store and rewritten wholesale after every mutation. Tags live under
// KeyTags in the config store. The two stores are written independently;
// there is no cross-store transaction.
package registry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/kvstore"
	"github.com/zx06/minke/internal/log"
	"github.com/zx06/minke/internal/secret"
)

const (
	KeyServers = "servers"
	KeyTags    = "tags"
)

// SecretStore holds the server snapshot. Get returns secret.ErrNotFound for
// a key that was never written.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// ConfigStore holds non-secret data. Get returns kvstore.ErrNotFound for a
// key that was never written.
type ConfigStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

type Options struct {
	Logger *slog.Logger
}

// Registry is safe for concurrent use. Mutating operations (Load, Upsert,
// Delete, Clear, AddTags, Import) run one at a time; readers see the last
// committed in-memory state and never wait on a conflict prompt. The guard is
// per process; writers in separate processes must hold a shared lock from
// before Load until they are done (see app.SessionOptions.Exclusive).
type Registry struct {
	secrets SecretStore
	config  ConfigStore
	logger  *slog.Logger

	op sync.Mutex

	mu      sync.RWMutex
	servers []Server
	tags    []string
}

func New(secrets SecretStore, config ConfigStore, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Registry{
		secrets: secrets,
		config:  config,
		logger:  logger,
		servers: []Server{},
		tags:    []string{},
	}
}

// Load replaces the in-memory state with what the stores hold. Missing keys,
// read failures and malformed data all load as empty; only a done ctx is
// reported.
func (r *Registry) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.op.Lock()
	defer r.op.Unlock()

	servers := r.readServers()
	tags := r.readTags()

	r.mu.Lock()
	r.servers = servers
	r.tags = tags
	r.mu.Unlock()

	r.logger.Debug("registry loaded", "servers", len(servers), "tags", len(tags))
	return nil
}

func (r *Registry) readServers() []Server {
	raw, err := r.secrets.Get(KeyServers)
	if err != nil {
		if stderrors.Is(err, secret.ErrNotFound) {
			r.logger.Debug("no server snapshot in secret store")
		} else {
			r.logger.Warn("failed to read server snapshot; starting empty", "err", err)
		}
		return []Server{}
	}
	if raw == "" {
		return []Server{}
	}
	decoded, err := decodeSnapshot(raw)
	if err != nil {
		// 不记录 blob 内容（含密码）
		r.logger.Warn("malformed server snapshot; starting empty", "err_type", errType(err))
		return []Server{}
	}
	servers := make([]Server, 0, len(decoded))
	for _, s := range decoded {
		if indexOf(servers, s.IP) >= 0 {
			r.logger.Warn("duplicate ip in server snapshot; keeping first", "ip", s.IP)
			continue
		}
		servers = append(servers, s.normalized())
	}
	return servers
}

func (r *Registry) readTags() []string {
	raw, err := r.config.Get(KeyTags)
	if err != nil {
		if stderrors.Is(err, kvstore.ErrNotFound) {
			r.logger.Debug("no tags in config store")
		} else {
			r.logger.Warn("failed to read tags; starting empty", "err", err)
		}
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		r.logger.Warn("malformed tags; starting empty", "err", err)
		return []string{}
	}
	return normalizeTags(tags)
}

// Upsert replaces the server with the same ip in place, or inserts s at the
// front when the ip is new, then persists the full list.
func (r *Registry) Upsert(ctx context.Context, s Server) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.op.Lock()
	defer r.op.Unlock()

	s = s.normalized()
	r.mu.Lock()
	if idx := indexOf(r.servers, s.IP); idx >= 0 {
		r.servers[idx] = s
		r.logger.Info("server updated", "ip", s.IP)
	} else {
		r.servers = append([]Server{s}, r.servers...)
		r.logger.Info("server added", "ip", s.IP)
	}
	snapshot := cloneServers(r.servers)
	r.mu.Unlock()

	return r.persistServers(snapshot)
}

// Delete removes the server with ip. It reports whether a server was
// removed; an unknown ip is not an error and writes nothing.
func (r *Registry) Delete(ctx context.Context, ip string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.op.Lock()
	defer r.op.Unlock()

	r.mu.Lock()
	idx := indexOf(r.servers, ip)
	if idx < 0 {
		r.mu.Unlock()
		return false, nil
	}
	r.servers = append(r.servers[:idx:idx], r.servers[idx+1:]...)
	snapshot := cloneServers(r.servers)
	r.mu.Unlock()

	r.logger.Info("server deleted", "ip", ip)
	return true, r.persistServers(snapshot)
}

// Clear empties servers and tags and persists both. The server snapshot is
// written first; if that fails the tag store is not touched.
func (r *Registry) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.op.Lock()
	defer r.op.Unlock()

	r.mu.Lock()
	r.servers = []Server{}
	r.tags = []string{}
	r.mu.Unlock()

	r.logger.Info("registry cleared")
	if err := r.persistServers([]Server{}); err != nil {
		return err
	}
	return r.persistTags([]string{})
}

// AddTags adds tags to the tag set (trimmed, empties dropped) and persists
// it. Existing tags are never removed.
func (r *Registry) AddTags(ctx context.Context, tags ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.op.Lock()
	defer r.op.Unlock()

	r.mu.Lock()
	before := len(r.tags)
	r.tags = MergeTags(r.tags, normalizeTags(tags))
	changed := len(r.tags) != before
	snapshot := append([]string(nil), r.tags...)
	r.mu.Unlock()

	if !changed {
		return nil
	}
	return r.persistTags(snapshot)
}

// Import validates data as an import document, merges it into the registry
// with Merge, persists the merged list and then the reconciled tag set.
//
// Validation happens before anything is touched. If ctx is cancelled during
// the merge nothing is changed or persisted.
func (r *Registry) Import(ctx context.Context, data []byte, res Resolver) (ImportReport, error) {
	imported, xe := DecodeImport(data)
	if xe != nil {
		return ImportReport{}, xe
	}
	if err := ctx.Err(); err != nil {
		return ImportReport{}, err
	}

	r.op.Lock()
	defer r.op.Unlock()

	merged, report, err := Merge(ctx, r.Servers(), imported, res, r.logger)
	if err != nil {
		r.logger.Warn("import aborted", "err", err)
		return report, err
	}

	r.mu.Lock()
	r.servers = merged
	r.tags = MergeTags(r.tags, ExtractTags(merged))
	snapshot := cloneServers(merged)
	tags := append([]string(nil), r.tags...)
	r.mu.Unlock()

	r.logger.Info("import merged",
		"added", len(report.Added),
		"overwritten", len(report.Overwritten),
		"skipped", len(report.Skipped),
		"unchanged", len(report.Unchanged),
	)
	// 服务器写入失败时不再写 tags，但内存中两者都已更新
	if err := r.persistServers(snapshot); err != nil {
		return report, err
	}
	if err := r.persistTags(tags); err != nil {
		return report, err
	}
	return report, nil
}

// Export writes the current server list (passwords included) in the import
// file format.
func (r *Registry) Export(w io.Writer) error {
	return WriteExport(w, r.Servers())
}

// Servers returns a copy of the server list in listing order.
func (r *Registry) Servers() []Server {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneServers(r.servers)
}

// Get returns the server with ip.
func (r *Registry) Get(ip string) (Server, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := indexOf(r.servers, ip)
	if idx < 0 {
		return Server{}, false
	}
	return r.servers[idx].normalized(), true
}

// Tags returns a copy of the tag set.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.tags...)
}

func (r *Registry) persistServers(servers []Server) error {
	blob, err := encodeSnapshot(servers)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode server snapshot", nil, err)
	}
	if err := r.secrets.Set(KeyServers, blob); err != nil {
		r.logger.Error("failed to persist servers", "err", err)
		return errors.Wrap(errors.CodeStorageWriteFailed, "failed to write servers to secret store",
			map[string]any{"store": "secret", "key": KeyServers}, err)
	}
	return nil
}

func (r *Registry) persistTags(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to encode tags", nil, err)
	}
	if err := r.config.Set(KeyTags, b); err != nil {
		r.logger.Error("failed to persist tags", "err", err)
		return errors.Wrap(errors.CodeStorageWriteFailed, "failed to write tags to config store",
			map[string]any{"store": "config", "key": KeyTags}, err)
	}
	return nil
}

func errType(err error) string {
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &se):
		return "syntax"
	case stderrors.As(err, &te):
		return "type"
	default:
		return "unknown"
	}
}
