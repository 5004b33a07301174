package router_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/leonj1/river"
	"github.com/leonj1/river/memlog"
	"github.com/leonj1/river/resume"
	"github.com/leonj1/river/router"
	"github.com/leonj1/river/runner"
	"github.com/leonj1/river/schema"
)

func echoDef() river.StreamDefinition {
	validator := schema.New(&jsonschema.Schema{
		Type:     "object",
		Required: []string{"message"},
		Properties: map[string]*jsonschema.Schema{
			"message": {Type: "string"},
		},
	})
	return river.NewStreamDefinition(validator, memlog.New(), "echo-storage", func(sctx *river.StreamContext) error {
		input := sctx.Input.(map[string]any)
		return sctx.Stream.AppendChunk(sctx.Context, input["message"])
	})
}

func collect(t *testing.T, ch <-chan river.Item) []river.Item {
	t.Helper()
	var items []river.Item
	timeout := time.After(2 * time.Second)
	for {
		select {
		case item, ok := <-ch:
			if !ok {
				return items
			}
			items = append(items, item)
		case <-timeout:
			t.Fatal("timed out collecting items")
		}
	}
}

func TestRouter_StartUnknownStreamReturnsNotFound(t *testing.T) {
	rt := router.New(nil, runner.Options{}, resume.Options{})

	_, rerr := rt.Start(context.Background(), "nope", nil, nil)
	if rerr == nil {
		t.Fatal("expected error")
	}
	if rerr.Kind != river.ErrorKindStreamNotFound {
		t.Errorf("Kind = %q, want stream_not_found", rerr.Kind)
	}
}

func TestRouter_StartValidationFailsBeforeAnyItem(t *testing.T) {
	rt := router.New(map[string]river.StreamDefinition{"echo": echoDef()}, runner.Options{}, resume.Options{})

	_, rerr := rt.Start(context.Background(), "echo", map[string]any{}, nil)
	if rerr == nil {
		t.Fatal("expected validation error for missing required field")
	}
	if rerr.Kind != river.ErrorKindValidation {
		t.Errorf("Kind = %q, want validation", rerr.Kind)
	}
}

func TestRouter_StartRunsValidatedInput(t *testing.T) {
	rt := router.New(map[string]river.StreamDefinition{"echo": echoDef()}, runner.Options{}, resume.Options{})

	ch, rerr := rt.Start(context.Background(), "echo", map[string]any{"message": "hi"}, nil)
	if rerr != nil {
		t.Fatalf("Start: %v", rerr)
	}

	items := collect(t, ch)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (start, chunk, end)", len(items))
	}
	if items[1].Type != river.ItemTypeChunk {
		t.Errorf("item 1 = %+v, want chunk", items[1])
	}
}

func TestRouter_ResumeUnknownStreamKeyReturnsNotFound(t *testing.T) {
	rt := router.New(map[string]river.StreamDefinition{"echo": echoDef()}, runner.Options{}, resume.Options{})

	token := river.EncodeToken(river.Token{
		ProviderID:      "redis",
		RouterStreamKey: "not-registered",
		StorageID:       "s1",
		RunID:           "r1",
	})

	_, rerr := rt.Resume(context.Background(), token)
	if rerr == nil {
		t.Fatal("expected error")
	}
	if rerr.Kind != river.ErrorKindStreamNotFound {
		t.Errorf("Kind = %q, want stream_not_found", rerr.Kind)
	}
}

func TestRouter_ResumeInvalidTokenReturnsInvalidResumptionToken(t *testing.T) {
	rt := router.New(map[string]river.StreamDefinition{"echo": echoDef()}, runner.Options{}, resume.Options{})

	_, rerr := rt.Resume(context.Background(), "!!!garbage!!!")
	if rerr == nil {
		t.Fatal("expected error")
	}
	if rerr.Kind != river.ErrorKindInvalidResumptionToken {
		t.Errorf("Kind = %q, want invalid_resumption_token", rerr.Kind)
	}
}
