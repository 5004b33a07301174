// Package memlog is the in-memory, non-resumable log backend (§4.2). It
// satisfies river.LogBackend so the runner harness can treat it exactly
// like a resumable backend, but Append/MarkEnd are no-ops, Tail reports
// river.ErrNotSupported and Exists always reports false (not
// ErrNotSupported) — streams on this backend cannot be resumed. A
// live subscriber still sees every item; only replay is unavailable.
package memlog

import (
	"context"

	"github.com/leonj1/river"
)

// Backend is the default non-resumable provider.
type Backend struct{}

// New creates the in-memory backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) ProviderID() string { return "memory" }

func (b *Backend) IsResumable() bool { return false }

// Append is a no-op: the in-memory backend keeps nothing durable.
func (b *Backend) Append(ctx context.Context, key river.LogKey, item river.Item) error {
	return nil
}

// MarkEnd is a no-op for the same reason.
func (b *Backend) MarkEnd(ctx context.Context, key river.LogKey) error {
	return nil
}

// Tail is not supported: there is nothing to replay.
func (b *Backend) Tail(ctx context.Context, key river.LogKey, fromOffset string) (<-chan river.TailEntry, error) {
	return nil, river.ErrNotSupported
}

// Exists always reports false: nothing is ever persisted.
func (b *Backend) Exists(ctx context.Context, key river.LogKey) (bool, error) {
	return false, nil
}

var _ river.LogBackend = (*Backend)(nil)
