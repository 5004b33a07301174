package river_test

import (
	"testing"

	"github.com/leonj1/river"
)

func TestChunkItem_RoundTrips(t *testing.T) {
	item, err := river.ChunkItem(map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("ChunkItem: %v", err)
	}

	encoded, err := river.EncodeItem(item)
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}

	decoded, err := river.DecodeItem(encoded)
	if err != nil {
		t.Fatalf("DecodeItem: %v", err)
	}
	if decoded.Type != river.ItemTypeChunk {
		t.Errorf("Type = %q, want chunk", decoded.Type)
	}
	if string(decoded.Chunk) != `{"text":"hello"}` {
		t.Errorf("Chunk = %s", decoded.Chunk)
	}
}

func TestStreamStartItem_TokenPresentIffResumable(t *testing.T) {
	withToken := river.StreamStartItem("run-1", "tok-abc")
	if withToken.Special.ResumptionToken != "tok-abc" {
		t.Errorf("ResumptionToken = %q, want tok-abc", withToken.Special.ResumptionToken)
	}

	noToken := river.StreamStartItem("run-2", "")
	if noToken.Special.ResumptionToken != "" {
		t.Errorf("ResumptionToken = %q, want empty", noToken.Special.ResumptionToken)
	}
}

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		name string
		item river.Item
		want bool
	}{
		{"chunk", mustChunk(t), false},
		{"stream_start", river.StreamStartItem("r", ""), false},
		{"stream_end", river.StreamEndItem(3, 12.5), true},
		{"stream_error", river.StreamErrorItem(river.NewError(river.ErrorKindProvider, "boom")), false},
		{"stream_fatal_error", river.StreamFatalErrorItem(river.NewError(river.ErrorKindProvider, "boom")), true},
		{"aborted", river.AbortedItem(), false},
	}
	for _, c := range cases {
		if got := c.item.IsTerminal(); got != c.want {
			t.Errorf("%s: IsTerminal() = %v, want %v", c.name, got, c.want)
		}
	}
}

func mustChunk(t *testing.T) river.Item {
	t.Helper()
	item, err := river.ChunkItem("payload")
	if err != nil {
		t.Fatalf("ChunkItem: %v", err)
	}
	return item
}
