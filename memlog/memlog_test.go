package memlog_test

import (
	"context"
	"testing"

	"github.com/leonj1/river"
	"github.com/leonj1/river/memlog"
)

func TestBackend_NotResumableAndUnsupportedTail(t *testing.T) {
	b := memlog.New()
	if b.ProviderID() != "memory" {
		t.Errorf("ProviderID() = %q, want memory", b.ProviderID())
	}
	if b.IsResumable() {
		t.Error("IsResumable() = true, want false")
	}

	key := river.LogKey{StorageID: "s1", RunID: "r1"}
	if exists, _ := b.Exists(context.Background(), key); exists {
		t.Error("Exists() = true, want false")
	}

	_, err := b.Tail(context.Background(), key, river.OffsetZero)
	if err != river.ErrNotSupported {
		t.Errorf("Tail err = %v, want ErrNotSupported", err)
	}
}

func TestBackend_AppendAndMarkEndAreNoops(t *testing.T) {
	b := memlog.New()
	key := river.LogKey{StorageID: "s1", RunID: "r1"}
	chunk, _ := river.ChunkItem("x")

	if err := b.Append(context.Background(), key, chunk); err != nil {
		t.Errorf("Append: %v", err)
	}
	if err := b.MarkEnd(context.Background(), key); err != nil {
		t.Errorf("MarkEnd: %v", err)
	}
}
