package river

import "encoding/json"

// ItemType discriminates the closed set of items that flow over the wire
// and into the log (§3, §4.1).
type ItemType string

const (
	ItemTypeChunk   ItemType = "chunk"
	ItemTypeSpecial ItemType = "special"
	ItemTypeAborted ItemType = "aborted"
)

// SpecialType discriminates the closed set of lifecycle/error markers
// carried inside a special item.
type SpecialType string

const (
	SpecialTypeStreamStart      SpecialType = "stream_start"
	SpecialTypeStreamEnd        SpecialType = "stream_end"
	SpecialTypeStreamError      SpecialType = "stream_error"
	SpecialTypeStreamFatalError SpecialType = "stream_fatal_error"
)

// Special is the lifecycle/error payload of a special item. Only the fields
// relevant to SpecialType are populated; the rest are zero values.
type Special struct {
	Type SpecialType `json:"type"`

	// stream_start
	RunID           string `json:"run_id,omitempty"`
	ResumptionToken string `json:"resumption_token,omitempty"`

	// stream_end — always present, even when legitimately zero (invariant 4)
	TotalChunks int     `json:"total_chunks"`
	TotalTimeMs float64 `json:"total_time_ms"`

	// stream_error / stream_fatal_error
	Error map[string]any `json:"error,omitempty"`
}

// Item is one entry of a run's sequence: either a user chunk, a special
// lifecycle/error marker, or the live-only aborted signal (invariant 5: the
// latter is never persisted).
type Item struct {
	Type ItemType `json:"type"`

	// chunk
	Chunk json.RawMessage `json:"chunk,omitempty"`

	// special
	Special *Special `json:"special,omitempty"`
}

// ChunkItem builds a chunk item from an arbitrary runner payload.
func ChunkItem(payload any) (Item, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Item{}, err
	}
	return Item{Type: ItemTypeChunk, Chunk: raw}, nil
}

// StreamStartItem builds the stream_start marker. resumptionToken is empty
// for non-resumable providers (§3 invariant: the token is present iff the
// provider is resumable).
func StreamStartItem(runID, resumptionToken string) Item {
	return Item{Type: ItemTypeSpecial, Special: &Special{
		Type:            SpecialTypeStreamStart,
		RunID:           runID,
		ResumptionToken: resumptionToken,
	}}
}

// StreamEndItem builds the terminal success marker.
func StreamEndItem(totalChunks int, totalTimeMs float64) Item {
	return Item{Type: ItemTypeSpecial, Special: &Special{
		Type:        SpecialTypeStreamEnd,
		TotalChunks: totalChunks,
		TotalTimeMs: totalTimeMs,
	}}
}

// StreamErrorItem builds a recoverable error marker; the run continues.
func StreamErrorItem(err *Error) Item {
	return Item{Type: ItemTypeSpecial, Special: &Special{
		Type:  SpecialTypeStreamError,
		Error: err.ToMap(),
	}}
}

// StreamFatalErrorItem builds the terminal error marker.
func StreamFatalErrorItem(err *Error) Item {
	return Item{Type: ItemTypeSpecial, Special: &Special{
		Type:  SpecialTypeStreamFatalError,
		Error: err.ToMap(),
	}}
}

// AbortedItem builds the live-path-only abort signal. Never call EncodeItem on
// this and append it to a log backend — callers must not persist it.
func AbortedItem() Item {
	return Item{Type: ItemTypeAborted}
}

// IsTerminal reports whether the item is stream_end or stream_fatal_error —
// the two markers that end a run's item sequence (§3 invariant 1).
func (it Item) IsTerminal() bool {
	if it.Type != ItemTypeSpecial || it.Special == nil {
		return false
	}
	return it.Special.Type == SpecialTypeStreamEnd || it.Special.Type == SpecialTypeStreamFatalError
}

// EncodeItem serializes an item to its one-message wire/log form.
func EncodeItem(it Item) ([]byte, error) {
	return json.Marshal(it)
}

// DecodeItem deserializes an item from its wire/log form.
func DecodeItem(data []byte) (Item, error) {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return Item{}, err
	}
	return it, nil
}
