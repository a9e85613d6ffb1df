package app

import "testing"

func TestBuildSpecHasSchemaVersion(t *testing.T) {
	a := New("dev", "abc123", "2024-01-01")
	s := a.BuildSpec()
	if s.SchemaVersion != 1 {
		t.Fatalf("schema_version=%d want 1", s.SchemaVersion)
	}
	if len(s.ErrorCodes) == 0 {
		t.Fatalf("expected error codes")
	}
	seenFormat := false
	for _, f := range s.GlobalFlags {
		if f.Name == "format" && f.Env == "MINKE_FORMAT" {
			seenFormat = true
		}
	}
	if !seenFormat {
		t.Fatalf("expected format flag in spec")
	}
}

func TestBuildSpecCommands(t *testing.T) {
	s := New("dev", "", "").BuildSpec()
	for _, name := range []string{"list", "show", "add", "delete", "import", "export", "clear", "tags list", "tags add", "probe", "mcp server", "spec", "version"} {
		if _, ok := s.Command(name); !ok {
			t.Errorf("command %q missing from spec", name)
		}
	}
	imp, _ := s.Command("import")
	if !imp.Mutates {
		t.Error("import should be marked as mutating")
	}
	if list, _ := s.Command("list"); list.Mutates {
		t.Error("list should not be marked as mutating")
	}
}

func TestVersionInfo(t *testing.T) {
	a := New("v1.0.0", "abc123", "2024-01-01")
	v := a.VersionInfo()
	if v.Version != "v1.0.0" {
		t.Errorf("version=%s want v1.0.0", v.Version)
	}
	if v.Commit != "abc123" {
		t.Errorf("commit=%s want abc123", v.Commit)
	}
	if v.Date != "2024-01-01" {
		t.Errorf("date=%s want 2024-01-01", v.Date)
	}
}
