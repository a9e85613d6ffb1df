package prompt

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/zx06/minke/internal/registry"
)

func scriptedAsker(answers map[string]bool, err error, seen *[]Question) Asker {
	return func(ctx context.Context, q Question) (bool, error) {
		*seen = append(*seen, q)
		if err != nil {
			return false, err
		}
		return answers[q.Description], nil
	}
}

func TestConflictQuestion(t *testing.T) {
	q := ConflictQuestion("10.0.0.1")
	if q.Title != "Conflict" {
		t.Errorf("title=%q", q.Title)
	}
	if q.Description != "Server with IP 10.0.0.1 already exists. Overwrite?" {
		t.Errorf("description=%q", q.Description)
	}
	if q.Affirmative != "Overwrite" || q.Negative != "Skip" {
		t.Errorf("labels=%q/%q", q.Affirmative, q.Negative)
	}
}

func TestConflictResolver(t *testing.T) {
	var seen []Question
	ask := scriptedAsker(map[string]bool{
		ConflictQuestion("a").Description: true,
		ConflictQuestion("b").Description: false,
	}, nil, &seen)
	r := NewConflictResolver(ask)

	cases := []struct {
		ip   string
		want registry.Decision
	}{
		{"a", registry.Overwrite},
		{"b", registry.Skip},
	}
	for _, tc := range cases {
		got, err := r.Resolve(context.Background(), tc.ip)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("Resolve(%s)=%v want %v", tc.ip, got, tc.want)
		}
	}
	if len(seen) != 2 {
		t.Fatalf("asked %d times, want 2", len(seen))
	}

	// 实现 registry.Resolver
	var _ registry.Resolver = r
}

func TestConflictResolver_AbortMeansSkip(t *testing.T) {
	var seen []Question
	r := NewConflictResolver(scriptedAsker(nil, ErrAborted, &seen))
	got, err := r.Resolve(context.Background(), "a")
	if !stderrors.Is(err, ErrAborted) {
		t.Fatalf("err=%v", err)
	}
	if got != registry.Skip {
		t.Fatalf("decision=%v want skip", got)
	}
}

func TestConfirm(t *testing.T) {
	var seen []Question
	ask := func(ctx context.Context, q Question) (bool, error) {
		seen = append(seen, q)
		return true, nil
	}
	ok, err := Confirm(context.Background(), ask, "Clear all data?", "This removes every server.")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if seen[0].Title != "Clear all data?" || seen[0].Affirmative != "Yes" {
		t.Fatalf("question=%+v", seen[0])
	}

	ok, err = Confirm(context.Background(), func(context.Context, Question) (bool, error) {
		return false, ErrAborted
	}, "t", "")
	if ok || !stderrors.Is(err, ErrAborted) {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestReadPasswordLine(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"single line", "s3cret\n", "s3cret", false},
		{"no newline", "s3cret", "s3cret", false},
		{"crlf", "s3cret\r\n", "s3cret", false},
		{"keeps spaces", " pass word \n", " pass word ", false},
		{"first line only", "one\ntwo\n", "one", false},
		{"empty", "", "", true},
		{"blank line", "\n", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadPasswordLine(strings.NewReader(tc.in))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %q err=%v", got, err)
			}
		})
	}
}
