package schemas

import (
	"strings"
	"testing"
	"time"

	anchor "github.com/dropanchor/anchor-go"
)

func TestMarshalInjectsTypeFirst(t *testing.T) {
	raw, err := Marshal(Address{Name: "Pier 7"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(raw), `{"$type":"`+CollectionAddress+`",`) {
		t.Fatalf("$type must lead the payload: %s", raw)
	}
}

func TestDecodeDispatchesOnType(t *testing.T) {
	raw, err := Marshal(Checkin{
		Text:       "hello",
		CreatedAt:  time.Now().UTC(),
		AddressRef: anchor.StrongRef{URI: "at://did:plc:abc/" + CollectionAddress + "/rk", CID: "bafy"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	checkin, ok := decoded.(Checkin)
	if !ok {
		t.Fatalf("expected Checkin, got %T", decoded)
	}
	if checkin.Text != "hello" || checkin.AddressRef.CID != "bafy" {
		t.Fatalf("payload mismatch: %+v", checkin)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	raw := []byte(`{"$type":"app.unknown.widget","size":3}`)

	decoded, err := Decode(raw)
	if err != nil {
		t.Fatalf("unknown types must not be an error: %v", err)
	}
	u, ok := decoded.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", decoded)
	}
	if u.Type() != "app.unknown.widget" {
		t.Fatalf("type id lost: %s", u.Type())
	}

	round, err := Marshal(u)
	if err != nil {
		t.Fatalf("marshal unknown: %v", err)
	}
	if string(round) != string(raw) {
		t.Fatalf("unknown payloads must pass through untouched: %s", round)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
