// Package store keeps a history of report runs.
//
// A [Run] records what was asked (options), what came back (per-report
// summaries) and the diagnostics seen, so that administrators can follow
// how a repository's cruft evolves between cleanups. Backends:
//   - [FileStore]: one JSON file per run, for the CLI
//   - [MongoStore]: a "runs" collection, for a shared server
//   - [NullStore]: discards everything
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/spruce/pkg/errors"
)

// ErrNotFound is returned by Get and Delete for an unknown run ID.
var ErrNotFound = errors.New(errors.ErrCodeRunNotFound, "run not found")

// Options are the query options a run was made with.
type Options struct {
	Reports  []string `json:"reports,omitempty" bson:"reports,omitempty"`
	Keep     int      `json:"keep" bson:"keep"`
	Channels []string `json:"channels,omitempty" bson:"channels,omitempty"`
}

// Summary condenses one report.
type Summary struct {
	Report    string `json:"report" bson:"report"`
	Items     int    `json:"items" bson:"items"`
	TotalSize int64  `json:"total_size" bson:"total_size"`
}

// Run is one saved report run.
type Run struct {
	ID          string    `json:"id" bson:"_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	Command     string    `json:"command" bson:"command"`
	RepoPath    string    `json:"repo_path" bson:"repo_path"`
	Fingerprint string    `json:"fingerprint" bson:"fingerprint"`
	Options     Options   `json:"options" bson:"options"`
	Summaries   []Summary `json:"summaries" bson:"summaries"`
	Diagnostics []string  `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// NewRun returns a run with a fresh ID and the current time.
func NewRun(command, repoPath, fingerprint string, opts Options) *Run {
	return &Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Command:     command,
		RepoPath:    repoPath,
		Fingerprint: fingerprint,
		Options:     opts,
	}
}

// Store persists runs.
type Store interface {
	// Save inserts or replaces run.
	Save(ctx context.Context, run *Run) error
	// Get returns the run with id, or [ErrNotFound].
	Get(ctx context.Context, id string) (*Run, error)
	// List returns up to limit runs, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Run, error)
	// Delete removes a run, or returns [ErrNotFound].
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close() error
}

// ValidateID rejects IDs that are not UUIDs, which also keeps them safe
// as file names.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id %q", id)
	}
	return nil
}
