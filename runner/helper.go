package runner

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leonj1/river"
)

// dualWriteHelper is the concrete river.Helper the harness hands to a
// runner (C4, §4.4). Every emission is appended to the log backend before
// it is published to the live queue — "a live subscriber can never observe
// an item that is not yet durable" (§4.4 ordering guarantee).
//
// Log writes use a context independent of the run's cancellable context:
// when the live transport drops, the subscriber's context is cancelled but
// whatever the runner already handed to the helper must still have a chance
// to land in the log (§5: "the log continues to accrue whatever the runner
// persisted before ceasing").
type dualWriteHelper struct {
	key     river.LogKey
	backend river.LogBackend
	live    chan<- river.Item
	logger  *slog.Logger

	onAppendFailure func(error)

	mu       sync.Mutex
	terminal bool // set once a terminal item has been appended+published
}

func newHelper(key river.LogKey, backend river.LogBackend, live chan<- river.Item, opts Options) *dualWriteHelper {
	return &dualWriteHelper{
		key:             key,
		backend:         backend,
		live:            live,
		logger:          opts.Logger,
		onAppendFailure: opts.OnAppendFailure,
	}
}

// append durably writes item. Failures are logged and swallowed (§4.4,
// §7) so a transient backend hiccup never tears down the live subscriber.
func (h *dualWriteHelper) append(item river.Item) {
	if err := h.backend.Append(context.Background(), h.key, item); err != nil {
		h.logger.Error("runner: log append failed", "storage_id", h.key.StorageID, "run_id", h.key.RunID, "err", err)
		if h.onAppendFailure != nil {
			h.onAppendFailure(err)
		}
	}
}

// markEnd writes the terminal marker. Failure is tolerated the same way
// (§4.4, §9 open question): resumers will simply block on Tail until
// retention removes the log.
func (h *dualWriteHelper) markEnd() {
	if err := h.backend.MarkEnd(context.Background(), h.key); err != nil {
		h.logger.Error("runner: mark-end failed", "storage_id", h.key.StorageID, "run_id", h.key.RunID, "err", err)
		if h.onAppendFailure != nil {
			h.onAppendFailure(err)
		}
	}
}

// publish sends item to the live queue, dropping it (rather than blocking
// forever) once ctx is cancelled — the subscriber that would have read it
// is already gone.
func (h *dualWriteHelper) publish(ctx context.Context, item river.Item) {
	select {
	case h.live <- item:
	case <-ctx.Done():
	}
}

func (h *dualWriteHelper) AppendChunk(ctx context.Context, payload any) error {
	h.mu.Lock()
	if h.terminal {
		h.mu.Unlock()
		return nil // a terminal item already closed the run; nothing more is recorded (§9, spec scenario S5)
	}
	h.mu.Unlock()

	item, err := river.ChunkItem(payload)
	if err != nil {
		return err
	}
	h.append(item)
	h.publish(ctx, item)
	return nil
}

func (h *dualWriteHelper) AppendError(ctx context.Context, rerr *river.Error) error {
	h.mu.Lock()
	if h.terminal {
		h.mu.Unlock()
		return nil // a terminal item already closed the run; nothing more is recorded (§9, spec scenario S5)
	}
	h.mu.Unlock()

	item := river.StreamErrorItem(rerr)
	h.append(item)
	h.publish(ctx, item)
	return nil
}

func (h *dualWriteHelper) SendFatalErrorAndClose(ctx context.Context, rerr *river.Error) error {
	h.mu.Lock()
	if h.terminal {
		h.mu.Unlock()
		return nil // last terminal item written is authoritative (§9 open question)
	}
	h.terminal = true
	h.mu.Unlock()

	item := river.StreamFatalErrorItem(rerr)
	h.append(item)
	h.publish(ctx, item)
	h.markEnd()
	return nil
}

func (h *dualWriteHelper) Close(ctx context.Context) error {
	// stream_end synthesis and the terminal marker are the harness's job,
	// performed once the runner function returns (§4.4).
	return nil
}

var _ river.Helper = (*dualWriteHelper)(nil)
