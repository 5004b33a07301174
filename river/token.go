package river

import (
	"encoding/base64"
	"encoding/json"
)

// Token is the four-field resumption token (§3, §4.1). All four fields are
// required; RouterStreamKey lets the resume endpoint dispatch without an
// out-of-band name hint.
type Token struct {
	ProviderID      string `json:"provider_id"`
	RouterStreamKey string `json:"router_stream_key"`
	StorageID       string `json:"storage_id"`
	RunID           string `json:"run_id"`
}

// EncodeToken serializes the token as canonical JSON and base-64 (URL-safe,
// unpadded) encodes it for transport.
func EncodeToken(t Token) string {
	data, _ := json.Marshal(t) // struct with only string fields; cannot fail
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeToken reverses EncodeToken. It fails with ErrorKindInvalidResumptionToken
// on malformed base-64, malformed JSON, or missing fields.
func DecodeToken(encoded string) (Token, *Error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		// Some encoders pad; accept standard URL encoding too.
		data, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return Token{}, NewError(ErrorKindInvalidResumptionToken, "malformed base64: "+err.Error())
		}
	}

	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, NewError(ErrorKindInvalidResumptionToken, "malformed token JSON: "+err.Error())
	}

	if t.ProviderID == "" || t.RouterStreamKey == "" || t.StorageID == "" || t.RunID == "" {
		return Token{}, NewError(ErrorKindInvalidResumptionToken, "token missing required field")
	}

	return t, nil
}
