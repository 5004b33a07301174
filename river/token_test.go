package river_test

import (
	"testing"

	"github.com/leonj1/river"
)

func TestToken_RoundTrips(t *testing.T) {
	tok := river.Token{
		ProviderID:      "redis",
		RouterStreamKey: "chat",
		StorageID:       "storage-1",
		RunID:           "run-1",
	}

	encoded := river.EncodeToken(tok)
	decoded, err := river.DecodeToken(encoded)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if decoded != tok {
		t.Errorf("decoded = %+v, want %+v", decoded, tok)
	}
}

func TestDecodeToken_RejectsGarbage(t *testing.T) {
	_, err := river.DecodeToken("not-a-valid-token!!!")
	if err == nil {
		t.Fatal("expected error decoding garbage token")
	}
	if err.Kind != river.ErrorKindInvalidResumptionToken {
		t.Errorf("Kind = %q, want invalid_resumption_token", err.Kind)
	}
}

func TestDecodeToken_RejectsMissingFields(t *testing.T) {
	encoded := river.EncodeToken(river.Token{ProviderID: "redis"})
	_, err := river.DecodeToken(encoded)
	if err == nil {
		t.Fatal("expected error decoding token with missing fields")
	}
	if err.Kind != river.ErrorKindInvalidResumptionToken {
		t.Errorf("Kind = %q, want invalid_resumption_token", err.Kind)
	}
}
