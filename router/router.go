// Package router implements the router & caller façade (§4.6): a finite
// name→river.StreamDefinition mapping exposing per-name Start/Resume
// entry points, input validation wiring, and router_stream_key threading
// into resumption tokens.
package router

import (
	"context"

	"github.com/leonj1/river"
	"github.com/leonj1/river/resume"
	"github.com/leonj1/river/runner"
)

// Router is a finite mapping from stream name (router_stream_key) to
// stream definition.
type Router struct {
	streams    map[string]river.StreamDefinition
	runnerOpts runner.Options
	resumeOpts resume.Options
}

// New creates a Router from a name→definition map, write-once at startup
// (§5: "no global mutable state beyond the registry of stream
// definitions, which is write-once at startup").
func New(streams map[string]river.StreamDefinition, runnerOpts runner.Options, resumeOpts resume.Options) *Router {
	cp := make(map[string]river.StreamDefinition, len(streams))
	for k, v := range streams {
		cp[k] = v
	}
	return &Router{streams: cp, runnerOpts: runnerOpts, resumeOpts: resumeOpts}
}

// Start validates inputData against the named stream's schema and, on
// success, starts a run (§4.6). Validation failures are raised
// synchronously before any item is emitted.
func (r *Router) Start(ctx context.Context, name string, inputData map[string]any, adapterRequest any) (<-chan river.Item, *river.Error) {
	def, ok := r.streams[name]
	if !ok {
		return nil, river.NewError(river.ErrorKindStreamNotFound, "unknown stream: "+name)
	}

	validated := any(inputData)
	if def.Validator != nil {
		v, verr := def.Validator.Validate(inputData)
		if verr != nil {
			return nil, verr
		}
		validated = v
	}

	return runner.Start(ctx, name, def, validated, adapterRequest, r.runnerOpts), nil
}

// Resume decodes encodedToken, confirms the embedded router_stream_key
// names a known stream, and invokes the resume reader against that
// stream's backend (§4.6).
func (r *Router) Resume(ctx context.Context, encodedToken string) (<-chan river.Item, *river.Error) {
	token, terr := river.DecodeToken(encodedToken)
	if terr != nil {
		return nil, terr
	}

	def, ok := r.streams[token.RouterStreamKey]
	if !ok {
		return nil, river.NewError(river.ErrorKindStreamNotFound, "unknown stream: "+token.RouterStreamKey)
	}

	return resume.Resume(ctx, def.Backend, encodedToken, r.resumeOpts)
}
