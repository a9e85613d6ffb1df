package kvstore

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/log"
)

// 两种 driver 共用同一组语义测试
func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	out := map[string]Store{}
	for _, driver := range []string{DriverFile, DriverSQLite} {
		st, xe := Open(driver, DefaultPath(filepath.Join(dir, driver), driver), nil)
		if xe != nil {
			t.Fatalf("Open(%s) failed: %v", driver, xe)
		}
		t.Cleanup(func() { st.Close() })
		out[driver] = st
	}
	return out
}

func TestStore_GetMissing(t *testing.T) {
	for name, st := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Get("tags"); !stderrors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_SetGetOverwrite(t *testing.T) {
	for name, st := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Set("tags", []byte(`["prod"]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := st.Set("tags", []byte(`["prod","db"]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := st.Get("tags")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `["prod","db"]` {
				t.Fatalf("Get=%s", got)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, st := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Delete("absent"); err != nil {
				t.Fatalf("Delete of missing key should succeed: %v", err)
			}
			if err := st.Set("tags", []byte(`[]`)); err != nil {
				t.Fatal(err)
			}
			if err := st.Delete("tags"); err != nil {
				t.Fatal(err)
			}
			if _, err := st.Get("tags"); !stderrors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after Delete, got %v", err)
			}
		})
	}
}

func TestStore_Reopen(t *testing.T) {
	for _, driver := range []string{DriverFile, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := DefaultPath(t.TempDir(), driver)
			st, xe := Open(driver, path, nil)
			if xe != nil {
				t.Fatal(xe)
			}
			if err := st.Set("tags", []byte(`["a","b"]`)); err != nil {
				t.Fatal(err)
			}
			st.Close()

			st2, xe := Open(driver, path, nil)
			if xe != nil {
				t.Fatal(xe)
			}
			defer st2.Close()
			got, err := st2.Get("tags")
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != `["a","b"]` {
				t.Fatalf("Get=%s", got)
			}
		})
	}
}

func TestFile_LayoutAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tagStore.json")
	f := OpenFile(path, nil)
	if err := f.Set("tags", []byte(`["prod"]`)); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"tags\": [\n    \"prod\"\n  ]\n}"
	if string(b) != want {
		t.Fatalf("file content=%q want %q", b, want)
	}
	if os.PathSeparator == '/' {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("mode=%v want 0600", info.Mode().Perm())
		}
	}
}

func TestFile_RejectsNonJSON(t *testing.T) {
	f := OpenFile(filepath.Join(t.TempDir(), "tagStore.json"), nil)
	if err := f.Set("tags", []byte("not json")); err == nil {
		t.Fatal("expected error for non-JSON value")
	}
	if _, err := f.Get("tags"); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("rejected value must not be stored, got %v", err)
	}
}

func TestFile_CorruptFileOpensEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagStore.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	f := OpenFile(path, log.New(&logs, slog.LevelWarn))
	if _, err := f.Get("tags"); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt file should open as empty store, got %v", err)
	}
	if !strings.Contains(logs.String(), "malformed config store file") {
		t.Fatalf("expected a warning, logs=%q", logs.String())
	}

	// 下一次写入覆盖损坏的文件
	if err := f.Set("tags", []byte(`["prod"]`)); err != nil {
		t.Fatal(err)
	}
	got, err := OpenFile(path, nil).Get("tags")
	if err != nil || string(got) != `["prod"]` {
		t.Fatalf("after rewrite Get=%s err=%v", got, err)
	}
}

func TestFile_UnreadablePathOpensEmpty(t *testing.T) {
	// 目录不能当文件读
	f := OpenFile(t.TempDir(), nil)
	if _, err := f.Get("tags"); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagStore.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	f := OpenFile(path, nil)
	if _, err := f.Get("tags"); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_SQLiteUnavailable(t *testing.T) {
	// 路径是目录，sqlite 打不开
	path := t.TempDir()
	st, xe := Open(DriverSQLite, path, nil)
	if xe != nil {
		t.Fatalf("open failure must not be fatal: %v", xe)
	}
	defer st.Close()
	if _, err := st.Get("tags"); err == nil || stderrors.Is(err, ErrNotFound) {
		t.Fatalf("Get should report the open failure, got %v", err)
	}
	if err := st.Set("tags", []byte(`[]`)); err == nil {
		t.Fatalf("Set should report the open failure, got %v", err)
	}
}

func TestOpen_Validation(t *testing.T) {
	if _, xe := Open(DriverFile, "", nil); xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected MINKE_CFG_INVALID for empty path, got %v", xe)
	}
	if _, xe := Open("redis", "/tmp/x", nil); xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected MINKE_CFG_INVALID for unknown driver, got %v", xe)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath("/cfg", DriverFile); got != filepath.Join("/cfg", "tagStore.json") {
		t.Errorf("file path=%q", got)
	}
	if got := DefaultPath("/cfg", ""); got != filepath.Join("/cfg", "tagStore.json") {
		t.Errorf("default path=%q", got)
	}
	if got := DefaultPath("/cfg", DriverSQLite); got != filepath.Join("/cfg", "minke.db") {
		t.Errorf("sqlite path=%q", got)
	}
}
