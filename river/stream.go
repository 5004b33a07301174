package river

import "context"

// InputValidator is the external collaborator that turns raw input data
// into a validated value or a validation error (§4.6, design note in §9:
// "the stream definition holds an opaque InputValidator capability with one
// method"). schema.Validator (package schema, wired from
// google/jsonschema-go) is the concrete implementation used by this module;
// callers may supply their own.
type InputValidator interface {
	// Validate decodes and validates input, returning the validated value
	// (typically the same map, normalized) or a *Error of kind
	// ErrorKindValidation.
	Validate(input map[string]any) (any, *Error)
}

// Helper is the object the runner calls to emit items (C4, §4.4). A
// concrete implementation (package runner) dual-writes every emission to
// the log backend and the live queue.
type Helper interface {
	// AppendChunk builds chunk(payload), appends it to the log, and
	// publishes it live.
	AppendChunk(ctx context.Context, payload any) error

	// AppendError builds stream_error{err}, appends and publishes it. The
	// stream continues.
	AppendError(ctx context.Context, err *Error) error

	// SendFatalErrorAndClose builds stream_fatal_error{err}, appends and
	// publishes it, writes the terminal marker, and signals the harness
	// that no further items will arrive.
	SendFatalErrorAndClose(ctx context.Context, err *Error) error

	// Close signals clean termination. stream_end synthesis and the
	// terminal marker are the harness's job, performed when the runner
	// function returns (§4.4).
	Close(ctx context.Context) error
}

// StreamContext is what a runner function receives: the validated input,
// the dual-write helper, the adapter's request value, and a cancellable
// context. Cancelling Context is how the adapter signals that the live
// transport dropped (§5); the runner is expected to observe it at its
// suspension points (every Helper call already does).
type StreamContext struct {
	Context        context.Context
	Input          any
	Stream         Helper
	AdapterRequest any
}

// Runner is the user-supplied stream logic: it reads StreamContext.Input,
// calls StreamContext.Stream methods zero or more times, and returns when
// done (or when it errors, in which case the harness synthesizes
// stream_fatal_error). This is the "structured task" redesign of the
// original opaque-callable runner (§9 design note).
type Runner func(ctx *StreamContext) error

// StreamDefinition is a named, immutable stream: validator, storage id,
// backend, and runner (§3). Builder chains are cosmetic (§9 design note) —
// NewStreamDefinition is a plain constructor.
type StreamDefinition struct {
	Validator InputValidator
	StorageID string
	Backend   LogBackend
	Run       Runner
}

// NewStreamDefinition builds a StreamDefinition. storageID is the stable
// identifier used to group all runs of this stream in the log; pass "" to
// have one generated (see river/idgen.go).
func NewStreamDefinition(validator InputValidator, backend LogBackend, storageID string, runner Runner) StreamDefinition {
	if storageID == "" {
		storageID = NewID()
	}
	return StreamDefinition{
		Validator: validator,
		StorageID: storageID,
		Backend:   backend,
		Run:       runner,
	}
}
