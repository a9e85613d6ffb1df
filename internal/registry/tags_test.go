package registry

import (
	"reflect"
	"testing"
)

func TestExtractTags(t *testing.T) {
	servers := []Server{
		{IP: "a", Tags: []string{"prod", " db "}},
		{IP: "b", Tags: []string{"db", "web", "  "}},
		{IP: "c"},
	}
	got := ExtractTags(servers)
	want := []string{"prod", "db", "web"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractTags=%v want %v", got, want)
	}
}

func TestExtractTags_Empty(t *testing.T) {
	got := ExtractTags(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("ExtractTags(nil)=%#v want empty non-nil", got)
	}
}

func TestMergeTags(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		imported []string
		want     []string
	}{
		{"both empty", nil, nil, []string{}},
		{"only existing", []string{"a"}, nil, []string{"a"}},
		{"only imported", nil, []string{"x", "y"}, []string{"x", "y"}},
		{"overlap keeps existing order", []string{"b", "a"}, []string{"a", "c"}, []string{"b", "a", "c"}},
		{"duplicates in imported", []string{"a"}, []string{"c", "c"}, []string{"a", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeTags(tc.existing, tc.imported)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("MergeTags=%v want %v", got, tc.want)
			}
		})
	}
}

func TestMergeTags_NeverRemoves(t *testing.T) {
	existing := []string{"legacy", "prod"}
	got := MergeTags(existing, []string{"db"})
	for _, tag := range existing {
		found := false
		for _, g := range got {
			if g == tag {
				found = true
			}
		}
		if !found {
			t.Errorf("tag %q was removed: %v", tag, got)
		}
	}
}
