package river

import "context"

// LogKey names one run's append-only log: the stable storage id of the
// stream definition plus the run id generated at start (§3: "the tuple
// (storage_id, run_id) names one immutable append-only log").
type LogKey struct {
	StorageID string
	RunID     string
}

// OffsetZero means "from the first entry" when passed to Tail.
const OffsetZero = ""

// TailEntry is one entry yielded by Tail: either an item, or the terminal
// marker (in which case Item is the zero value and End is true).
type TailEntry struct {
	Item   Item
	Offset string
	End    bool
}

// LogBackend is the append-only ordered log contract (C2, §4.2). It must be
// safe for concurrent use by multiple runs (§5: "shared process-wide").
//
// Implementations: memlog (in-memory, non-resumable) and redislog
// (Redis-streams-backed, resumable).
type LogBackend interface {
	// ProviderID identifies the backend in resumption tokens.
	ProviderID() string

	// IsResumable reports whether this backend supports Tail/Exists. A
	// non-resumable backend's Append/MarkEnd are no-ops and its Tail
	// returns ErrNotSupported; memlog's Exists reports false rather than
	// an error, so a resume against it fails as stream_not_found.
	IsResumable() bool

	// Append durably appends item to the log named by key. It returns once
	// the item is ordered in the log. Failures must not be allowed to tear
	// down the live path — callers log and swallow them (§4.4).
	Append(ctx context.Context, key LogKey, item Item) error

	// MarkEnd writes the log's distinguishable terminal marker. At most one
	// marker is written per run.
	MarkEnd(ctx context.Context, key LogKey) error

	// Tail starts at the first entry past fromOffset (OffsetZero means
	// "beginning") and yields entries in append order until a terminal
	// marker is observed, blocking briefly between reads when the log has
	// no new entries. It returns when ctx is cancelled.
	Tail(ctx context.Context, key LogKey, fromOffset string) (<-chan TailEntry, error)

	// Exists reports whether a log exists for key.
	Exists(ctx context.Context, key LogKey) (bool, error)
}

// ErrNotSupported is returned by non-resumable backends from Tail.
var ErrNotSupported = NewError(ErrorKindProvider, "backend does not support resumption")
