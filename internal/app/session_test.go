package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/zx06/minke/internal/config"
	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/registry"
)

func testConfig(t *testing.T, driver string) config.Resolved {
	t.Helper()
	dir := t.TempDir()
	name := "tagStore.json"
	if driver == "sqlite" {
		name = "minke.db"
	}
	return config.Resolved{
		KeyringService: "com.uros.minke-registry.test",
		StoreDriver:    driver,
		StorePath:      filepath.Join(dir, name),
	}
}

func TestOpenSession_RoundTripThroughKeyring(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			keyring.MockInit()
			cfg := testConfig(t, driver)
			ctx := context.Background()

			s, xe := OpenSession(ctx, SessionOptions{Config: cfg})
			if xe != nil {
				t.Fatal(xe)
			}
			if err := s.Registry.Upsert(ctx, registry.Server{IP: "10.0.0.1", User: "root", Password: "pw", Tags: []string{"prod"}}); err != nil {
				t.Fatal(err)
			}
			if err := s.Registry.AddTags(ctx, "prod"); err != nil {
				t.Fatal(err)
			}
			if err := s.Close(); err != nil {
				t.Fatal(err)
			}

			// 密码只在 keyring 中
			blob, err := keyring.Get(cfg.KeyringService, registry.KeyServers)
			if err != nil {
				t.Fatalf("snapshot not in keyring: %v", err)
			}
			if blob == "" {
				t.Fatal("empty snapshot")
			}

			s2, xe := OpenSession(ctx, SessionOptions{Config: cfg})
			if xe != nil {
				t.Fatal(xe)
			}
			defer s2.Close()
			got, ok := s2.Registry.Get("10.0.0.1")
			if !ok || got.Password != "pw" {
				t.Fatalf("reloaded server=%+v ok=%v", got, ok)
			}
			if tags := s2.Registry.Tags(); len(tags) != 1 || tags[0] != "prod" {
				t.Fatalf("reloaded tags=%v", tags)
			}
		})
	}
}

func TestOpenSession_BadDriver(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig(t, "file")
	cfg.StoreDriver = "redis"
	if _, xe := OpenSession(context.Background(), SessionOptions{Config: cfg}); xe == nil || xe.Code != "MINKE_CFG_INVALID" {
		t.Fatalf("expected MINKE_CFG_INVALID, got %v", xe)
	}
}

func TestOpenSession_CorruptTagStoreStillLoadsServers(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig(t, "file")
	ctx := context.Background()

	s, xe := OpenSession(ctx, SessionOptions{Config: cfg})
	if xe != nil {
		t.Fatal(xe)
	}
	if err := s.Registry.Upsert(ctx, registry.Server{IP: "10.0.0.1", User: "root", Password: "pw", Tags: []string{"prod"}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if err := os.WriteFile(cfg.StorePath, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	s2, xe := OpenSession(ctx, SessionOptions{Config: cfg})
	if xe != nil {
		t.Fatalf("corrupt tag store must not be fatal: %v", xe)
	}
	defer s2.Close()
	if _, ok := s2.Registry.Get("10.0.0.1"); !ok {
		t.Fatal("servers should still load")
	}
	if tags := s2.Registry.Tags(); len(tags) != 0 {
		t.Fatalf("tags should start empty, got %v", tags)
	}
	if err := s2.Registry.AddTags(ctx, "db"); err != nil {
		t.Fatalf("next write should replace the corrupt file: %v", err)
	}
}

func TestOpenSession_SQLiteUnavailable(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig(t, "sqlite")
	cfg.StorePath = t.TempDir() // 目录，sqlite 无法打开
	ctx := context.Background()

	s, xe := OpenSession(ctx, SessionOptions{Config: cfg})
	if xe != nil {
		t.Fatalf("unopenable sqlite store must not be fatal: %v", xe)
	}
	defer s.Close()
	if tags := s.Registry.Tags(); len(tags) != 0 {
		t.Fatalf("tags=%v", tags)
	}
	if err := s.Registry.AddTags(ctx, "prod"); !errors.HasCode(err, errors.CodeStorageWriteFailed) {
		t.Fatalf("expected MINKE_STORAGE_WRITE_FAILED, got %v", err)
	}
}

func TestOpenSession_ExclusiveSerializesSessions(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig(t, "file")
	ctx := context.Background()

	first, xe := OpenSession(ctx, SessionOptions{Config: cfg, Exclusive: true})
	if xe != nil {
		t.Fatal(xe)
	}
	if err := first.Registry.Upsert(ctx, registry.Server{IP: "10.0.0.1", User: "a", Password: "p1"}); err != nil {
		t.Fatal(err)
	}

	type result struct {
		s  *Session
		xe *errors.XError
	}
	opened := make(chan result, 1)
	go func() {
		s, xe := OpenSession(ctx, SessionOptions{Config: cfg, Exclusive: true})
		opened <- result{s, xe}
	}()

	select {
	case <-opened:
		t.Fatal("second exclusive session opened while the first holds the lock")
	case <-time.After(200 * time.Millisecond):
	}

	// 第一个会话在持锁期间继续写入，第二个应看到全部结果
	if err := first.Registry.Upsert(ctx, registry.Server{IP: "10.0.0.9", User: "b", Password: "p2"}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	var second result
	select {
	case second = <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("second session did not open after the lock was released")
	}
	if second.xe != nil {
		t.Fatal(second.xe)
	}
	defer second.s.Close()
	for _, ip := range []string{"10.0.0.1", "10.0.0.9"} {
		if _, ok := second.s.Registry.Get(ip); !ok {
			t.Fatalf("second session lost %s", ip)
		}
	}
}

func TestOpenSession_ExclusiveWaitHonorsContext(t *testing.T) {
	keyring.MockInit()
	cfg := testConfig(t, "file")

	first, xe := OpenSession(context.Background(), SessionOptions{Config: cfg, Exclusive: true})
	if xe != nil {
		t.Fatal(xe)
	}
	defer first.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, xe := OpenSession(ctx, SessionOptions{Config: cfg, Exclusive: true}); xe == nil || xe.Code != errors.CodeStorageWriteFailed {
		t.Fatalf("expected MINKE_STORAGE_WRITE_FAILED, got %v", xe)
	}

	// 只读会话不等锁
	ro, xe := OpenSession(context.Background(), SessionOptions{Config: cfg})
	if xe != nil {
		t.Fatal(xe)
	}
	ro.Close()
}

func TestProbeOptions(t *testing.T) {
	s := registry.Server{IP: "10.0.0.1", User: "root", Password: "pw"}
	opts := ProbeOptions(config.SSHConfig{Port: 2222, KnownHostsFile: "/tmp/kh", Timeout: 3 * time.Second, SkipHostKey: true}, s)
	if opts.Host != "10.0.0.1" || opts.User != "root" || opts.Password != "pw" {
		t.Fatalf("opts=%+v", opts)
	}
	if opts.Port != 2222 || opts.KnownHostsFile != "/tmp/kh" || opts.Timeout != 3*time.Second || !opts.SkipKnownHostsCheck {
		t.Fatalf("opts=%+v", opts)
	}
}
