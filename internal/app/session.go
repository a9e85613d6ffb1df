package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/zx06/minke/internal/config"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/kvstore"
	"github.com/zx06/minke/internal/log"
	"github.com/zx06/minke/internal/registry"
	"github.com/zx06/minke/internal/secret"
	"github.com/zx06/minke/internal/ssh"
)

// Session 持有一个已加载的 registry 及其底层存储。
type Session struct {
	Registry *registry.Registry
	Secrets  secret.Store
	Store    kvstore.Store

	lock *flock.Flock
}

// Close 关闭 config store 并释放跨进程锁（如持有）。
func (s *Session) Close() error {
	var err error
	if s.Store != nil {
		err = s.Store.Close()
	}
	if s.lock != nil {
		if uerr := s.lock.Unlock(); err == nil {
			err = uerr
		}
		s.lock = nil
	}
	return err
}

// LockFileName 与 config store 放在同一目录。
const LockFileName = "minke.lock"

const lockRetryDelay = 50 * time.Millisecond

type SessionOptions struct {
	Config config.Resolved
	Logger *slog.Logger

	// Secrets 为空时使用 Config.KeyringService 对应的 OS keyring。
	Secrets secret.Store

	// Exclusive 在 Load 之前获取跨进程文件锁，直到 Close 才释放。
	// 会修改数据的命令必须设置，否则另一个进程的写入会被整份快照覆盖。
	Exclusive bool
}

// OpenSession 打开两个存储并加载 registry。
func OpenSession(ctx context.Context, opts SessionOptions) (*Session, *errors.XError) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Config.StorePath == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "config store path is required", nil)
	}

	var lock *flock.Flock
	if opts.Exclusive {
		l, xe := acquireLock(ctx, filepath.Join(filepath.Dir(opts.Config.StorePath), LockFileName), logger)
		if xe != nil {
			return nil, xe
		}
		lock = l
	}

	secrets := opts.Secrets
	if secrets == nil {
		secrets = secret.NewKeyring(opts.Config.KeyringService)
	}
	store, xe := kvstore.Open(opts.Config.StoreDriver, opts.Config.StorePath, logger)
	if xe != nil {
		releaseLock(lock)
		return nil, xe
	}
	logger.Debug("config store opened", "driver", opts.Config.StoreDriver, "path", opts.Config.StorePath)

	reg := registry.New(secrets, store, registry.Options{Logger: logger})
	if err := reg.Load(ctx); err != nil {
		_ = store.Close()
		releaseLock(lock)
		return nil, errors.AsOrWrap(err)
	}
	return &Session{Registry: reg, Secrets: secrets, Store: store, lock: lock}, nil
}

// acquireLock 阻塞到拿到锁或 ctx 结束。
func acquireLock(ctx context.Context, path string, logger *slog.Logger) (*flock.Flock, *errors.XError) {
	details := map[string]any{"path": path}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(errors.CodeStorageWriteFailed, "failed to create registry lock directory", details, err)
	}
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageWriteFailed, "failed to lock registry", details, err)
	}
	if !ok {
		logger.Info("registry is locked by another minke process; waiting", "path", path)
		ok, err = l.TryLockContext(ctx, lockRetryDelay)
		if err != nil || !ok {
			return nil, errors.Wrap(errors.CodeStorageWriteFailed, "failed to lock registry", details, err)
		}
	}
	logger.Debug("registry locked", "path", path)
	return l, nil
}

func releaseLock(l *flock.Flock) {
	if l != nil {
		_ = l.Unlock()
	}
}

// ProbeOptions 把已保存的 server 与 ssh 配置合成一次探测的参数。
func ProbeOptions(cfg config.SSHConfig, s registry.Server) ssh.Options {
	return ssh.Options{
		Host:                s.IP,
		Port:                cfg.Port,
		User:                s.User,
		Password:            s.Password,
		KnownHostsFile:      cfg.KnownHostsFile,
		Timeout:             cfg.Timeout,
		SkipKnownHostsCheck: cfg.SkipHostKey,
	}
}
