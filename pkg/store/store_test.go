package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/spruce/pkg/errors"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		run := NewRun("report", "/srv/repo", "fp", Options{Keep: i + 1})
		run.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		run.Summaries = []Summary{{Report: "unused", Items: i, TotalSize: int64(i) * 1000}}
		if err := s.Save(ctx, run); err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, run.ID)
	}

	got, err := s.Get(ctx, ids[1])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Options.Keep != 2 || got.Summaries[0].Items != 1 || got.RepoPath != "/srv/repo" {
		t.Errorf("Get = %+v", got)
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("List order wrong: %v", runs)
	}
	if runs, _ := s.List(ctx, 2); len(runs) != 2 || runs[0].ID != ids[2] {
		t.Errorf("List(2) = %d runs", len(runs))
	}

	if err := s.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, ids[0]); !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("Get after Delete error = %v, want RUN_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, ids[0]); !errors.IsNotFound(err) {
		t.Errorf("second Delete error = %v, want not found", err)
	}
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	if err := os.WriteFile(filepath.Join(s.Path(), "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, NewRun("plan", "/r", "fp", Options{})); err != nil {
		t.Fatal(err)
	}
	runs, err := s.List(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Errorf("List = %d runs, %v; want 1", len(runs), err)
	}
}

func TestValidateID(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	for _, id := range []string{"", "../etc/passwd", "not-a-uuid"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Get(%q) error = %v, want INVALID_INPUT", id, err)
		}
	}
	if err := s.Save(ctx, &Run{ID: "../x"}); err == nil {
		t.Error("Save with bad ID returned nil error")
	}
}

func TestNewRun(t *testing.T) {
	a := NewRun("report", "/r", "fp", Options{})
	b := NewRun("report", "/r", "fp", Options{})
	if a.ID == b.ID {
		t.Error("NewRun IDs should be unique")
	}
	if err := ValidateID(a.ID); err != nil {
		t.Errorf("NewRun ID invalid: %v", err)
	}
	if a.CreatedAt.IsZero() || a.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v", a.CreatedAt)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NullStore{}
	if err := s.Save(ctx, NewRun("report", "/r", "fp", Options{})); err != nil {
		t.Errorf("Save: %v", err)
	}
	if runs, err := s.List(ctx, 10); err != nil || len(runs) != 0 {
		t.Errorf("List = %v, %v", runs, err)
	}
	if _, err := s.Get(ctx, "x"); !errors.IsNotFound(err) {
		t.Errorf("Get error = %v", err)
	}
}

func TestNewMongoStoreBadURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewMongoStore(ctx, "not-a-mongo-uri", ""); err == nil {
		t.Error("NewMongoStore with invalid URI returned nil error")
	}
}
