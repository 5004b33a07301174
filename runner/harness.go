// Package runner implements the runner harness (C3, §4.3) and the
// dual-write helper (C4, §4.4): the state machine that turns a
// river.StreamDefinition plus validated input into a live item sequence,
// persisting every item to the log backend along the way.
//
// The runner task itself is expressed with github.com/matgreaves/run's
// Runner/Func — the same task abstraction matgreaves/rig's own
// server/orchestrator.go uses to run its artifact/service phases — rather
// than a bare goroutine, per the "runner-as-opaque-callable → structured
// task" design note.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/matgreaves/run"

	"github.com/leonj1/river"
)

// Options configures a Start call.
type Options struct {
	// Logger receives diagnostics for swallowed log-backend failures.
	// Defaults to a text logger writing to river.LogWriter(ctx).
	Logger *slog.Logger

	// OnAppendFailure, if set, is called whenever a log append or mark-end
	// write fails (§9 open question: "a port should expose a metrics
	// hook"). Intended for wiring a counter; it must not block.
	OnAppendFailure func(error)
}

func (o Options) withDefaults(ctx context.Context) Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(river.LogWriter(ctx), nil))
	}
	return o
}

// Start runs def against input, synthesizing lifecycle markers and
// persisting every item, and returns the live item sequence (§4.3).
//
// routerStreamKey is threaded into the resumption token by the caller
// façade (§4.6) so a later resume can dispatch without an out-of-band name
// hint; pass "" if the definition is not reachable through a router.
// DecodeToken rejects a token whose router_stream_key is empty, so such a
// run cannot be resumed.
//
// Cancelling ctx is how the adapter signals that the live transport
// dropped (§5): Start emits river.AbortedItem() to a reader still waiting
// on the returned channel and stops draining, while
// the runner task is cancelled cooperatively and whatever it persists
// before noticing keeps landing in the log.
func Start(ctx context.Context, routerStreamKey string, def river.StreamDefinition, input any, adapterRequest any, opts Options) <-chan river.Item {
	opts = opts.withDefaults(ctx)

	runID := river.NewID()
	key := river.LogKey{StorageID: def.StorageID, RunID: runID}

	var resumptionToken string
	if def.Backend.IsResumable() {
		resumptionToken = river.EncodeToken(river.Token{
			ProviderID:      def.Backend.ProviderID(),
			RouterStreamKey: routerStreamKey,
			StorageID:       def.StorageID,
			RunID:           runID,
		})
	}
	startItem := river.StreamStartItem(runID, resumptionToken)

	// Persist stream_start too, so a resumer sees the same prefix a live
	// subscriber saw (§4.3 step 3, §4.5). The runner never observes this —
	// it is synthesized and written before the runner task is invoked.
	if err := def.Backend.Append(context.Background(), key, startItem); err != nil {
		opts.Logger.Error("runner: append stream_start failed", "storage_id", key.StorageID, "run_id", key.RunID, "err", err)
		if opts.OnAppendFailure != nil {
			opts.OnAppendFailure(err)
		}
	}

	out := make(chan river.Item)
	live := make(chan river.Item)

	runCtx, cancelRun := context.WithCancel(ctx)
	helper := newHelper(key, def.Backend, live, opts)

	sctx := &river.StreamContext{
		Context:        runCtx,
		Input:          input,
		Stream:         helper,
		AdapterRequest: adapterRequest,
	}

	task := run.Func(func(taskCtx context.Context) error {
		return def.Run(sctx)
	})

	done := make(chan error, 1)
	go func() {
		done <- task.Run(runCtx)
	}()

	go func() {
		defer close(out)
		defer cancelRun()

		if !sendOut(ctx, out, startItem) {
			// Adapter already gone: nothing to drain to, but the runner
			// task is still running — let it finish in the background
			// so its goroutine doesn't leak.
			go func() { <-done }()
			return
		}

		start := time.Now()
		totalChunks := 0

		for {
			select {
			case item := <-live:
				if item.Type == river.ItemTypeChunk {
					totalChunks++
				}
				sent := sendOut(ctx, out, item)
				if !sent || item.IsTerminal() {
					// Either the adapter disconnected, or the runner
					// itself sent a terminal item via
					// SendFatalErrorAndClose, which already appended it
					// and wrote the terminal marker (§4.4). Either way,
					// nothing left to synthesize; just let the task
					// finish in the background so its goroutine doesn't
					// leak.
					go func() { <-done }()
					return
				}

			case err := <-done:
				// Drain anything already sitting in live before
				// finalizing — Append/publish inside the runner's last
				// helper call happens-before Run returns.
				for drained := false; !drained; {
					select {
					case item := <-live:
						if item.Type == river.ItemTypeChunk {
							totalChunks++
						}
						if !sendOut(ctx, out, item) {
							return
						}
						if item.IsTerminal() {
							return
						}
					default:
						drained = true
					}
				}

				if err != nil {
					fatal := river.AsRunnerError(err)
					fitem := river.StreamFatalErrorItem(fatal)
					helper.append(fitem)
					sendOut(ctx, out, fitem)
				} else {
					eitem := river.StreamEndItem(totalChunks, float64(time.Since(start).Milliseconds()))
					helper.append(eitem)
					sendOut(ctx, out, eitem)
				}
				helper.markEnd()
				return

			case <-ctx.Done():
				// Hand AbortedItem to a reader still waiting on out. A
				// select against the already-closed ctx.Done() would pick
				// between the two cases at random.
				select {
				case out <- river.AbortedItem():
				default:
				}
				go func() { <-done }()
				return
			}
		}
	}()

	return out
}

// sendOut delivers item to out, giving up without blocking once ctx is
// cancelled — the adapter reading out is gone by then (§5: cancelling ctx
// is how the adapter signals the live transport dropped). Reports whether
// the send happened.
func sendOut(ctx context.Context, out chan<- river.Item, item river.Item) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}
