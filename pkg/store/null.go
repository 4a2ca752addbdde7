package store

import "context"

// NullStore discards runs.
type NullStore struct{}

func (NullStore) Save(ctx context.Context, run *Run) error { return nil }

func (NullStore) Get(ctx context.Context, id string) (*Run, error) { return nil, ErrNotFound }

func (NullStore) List(ctx context.Context, limit int) ([]*Run, error) { return []*Run{}, nil }

func (NullStore) Delete(ctx context.Context, id string) error { return ErrNotFound }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
