package store

import (
	"context"
	"time"

	"unibuild/pkg/platform/sentinel"
)

// Unavailable is the backend for contexts without durable storage. Every read
// is absent and every write succeeds without effect. Stores over it are not
// interactive, so they never touch the marker cookie either.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string, string) (string, error) {
	return "", sentinel.ErrNotFound
}

func (Unavailable) SetMany(context.Context, string, map[string]string, time.Duration) error {
	return nil
}

func (Unavailable) Delete(context.Context, string, ...string) error { return nil }

func (Unavailable) Health(context.Context) error { return nil }

// Inert reports that nothing written here is kept.
func (Unavailable) Inert() bool { return true }
