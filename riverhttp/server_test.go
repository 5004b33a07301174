package riverhttp_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/leonj1/river"
	"github.com/leonj1/river/memlog"
	"github.com/leonj1/river/resume"
	"github.com/leonj1/river/riverhttp"
	"github.com/leonj1/river/router"
	"github.com/leonj1/river/runner"
	"github.com/leonj1/river/schema"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	validator := schema.New(&jsonschema.Schema{
		Type:     "object",
		Required: []string{"message"},
		Properties: map[string]*jsonschema.Schema{
			"message": {Type: "string"},
		},
	})
	def := river.NewStreamDefinition(validator, memlog.New(), "echo-storage", func(sctx *river.StreamContext) error {
		input := sctx.Input.(map[string]any)
		return sctx.Stream.AppendChunk(sctx.Context, input["message"])
	})

	rt := router.New(map[string]river.StreamDefinition{"echo": def}, runner.Options{}, resume.Options{})
	s := riverhttp.NewServer(rt)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

// readFrames reads bare "data: <json>\n\n" frames off body until EOF.
func readFrames(t *testing.T, body *bufio.Reader) []river.Item {
	t.Helper()
	var items []river.Item
	for {
		line, err := body.ReadString('\n')
		if strings.HasPrefix(line, "data: ") {
			raw := strings.TrimSuffix(strings.TrimPrefix(line, "data: "), "\n")
			var item river.Item
			if jsonErr := json.Unmarshal([]byte(raw), &item); jsonErr != nil {
				t.Fatalf("unmarshal frame %q: %v", raw, jsonErr)
			}
			items = append(items, item)
		}
		if err != nil {
			return items
		}
	}
}

func TestServer_StartStreamsItemsAsBareDataFrames(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"router_stream_key": "echo",
		"input":             map[string]any{"message": "hi"},
	})
	resp, err := http.Post(ts.URL+"/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	items := readFrames(t, bufio.NewReader(resp.Body))
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (start, chunk, end)", len(items))
	}
	if items[0].Special.Type != river.SpecialTypeStreamStart {
		t.Errorf("item 0 = %+v, want stream_start", items[0])
	}
	if items[2].Special.Type != river.SpecialTypeStreamEnd {
		t.Errorf("item 2 = %+v, want stream_end", items[2])
	}
}

func TestServer_StartUnknownStreamReturns404(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"router_stream_key": "nope",
		"input":             map[string]any{},
	})
	resp, err := http.Post(ts.URL+"/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_StartInvalidInputReturns400(t *testing.T) {
	ts := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"router_stream_key": "echo",
		"input":             map[string]any{},
	})
	resp, err := http.Post(ts.URL+"/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_ResumeMissingKeyReturns400(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/stream")
	if err != nil {
		t.Fatalf("GET /stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_ResumeUnknownTokenReturns404(t *testing.T) {
	ts := newTestServer(t)

	token := river.EncodeToken(river.Token{
		ProviderID:      "memory",
		RouterStreamKey: "echo",
		StorageID:       "s1",
		RunID:           "r1",
	})
	resp, err := http.Get(ts.URL + "/stream?resumeKey=" + url.QueryEscape(token))
	if err != nil {
		t.Fatalf("GET /stream: %v", err)
	}
	defer resp.Body.Close()

	// memlog.Exists always reports false, so resume fails existence
	// checking before Tail is ever attempted.
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for a non-resumable backend", resp.StatusCode)
	}
}
