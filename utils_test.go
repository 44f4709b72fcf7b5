package anchor

import "testing"

func TestParseATURI(t *testing.T) {
	authority, collection, rkey, err := ParseATURI("at://did:plc:abc/app.dropanchor.checkin/3k2a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authority != "did:plc:abc" || collection != "app.dropanchor.checkin" || rkey != "3k2a" {
		t.Fatalf("bad parts: %s %s %s", authority, collection, rkey)
	}

	bad := []string{
		"",
		"https://example.com/a/b",
		"at://did:plc:abc",
		"at://did:plc:abc/collection",
		"at://did:plc:abc/collection/rkey/extra",
		"at:///collection/rkey",
		"at://did:plc:abc//rkey",
		"at://did:plc:abc/collection/",
	}
	for _, uri := range bad {
		if _, _, _, err := ParseATURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}

func TestComposeATURIRoundTrip(t *testing.T) {
	uri := ComposeATURI("did:plc:abc", "app.bsky.feed.post", "xyz")
	authority, collection, rkey, err := ParseATURI(uri)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authority != "did:plc:abc" || collection != "app.bsky.feed.post" || rkey != "xyz" {
		t.Fatalf("round trip mismatch: %s", uri)
	}
}

func TestIsDID(t *testing.T) {
	if !IsDID("did:plc:abc123") {
		t.Error("did:plc:abc123 should be a DID")
	}
	if !IsDID("did:web:example.com") {
		t.Error("did:web:example.com should be a DID")
	}
	for _, s := range []string{"", "did:", "did:plc", "alice.bsky.social", "DID:plc:abc"} {
		if IsDID(s) {
			t.Errorf("%q should not be a DID", s)
		}
	}
}

func TestIsValidHandle(t *testing.T) {
	cases := []struct {
		handle string
		want   bool
	}{
		{"alice.bsky.social", true},
		{"example.com", true},
		{"xn--sterreich-z7a.at", true},
		{"alice", false},
		{"", false},
		{"alice..social", false},
		{"-alice.social", false},
		{"alice-.social", false},
		{"alice.b", false},
		{"alice.123", false},
		{"alice.test.invalid", false},
		{"dev.localhost", false},
		{"printer.local", false},
		{"demo.example", false},
		{"café.social", false},
	}
	for _, c := range cases {
		if got := IsValidHandle(c.handle); got != c.want {
			t.Errorf("IsValidHandle(%q) = %v, want %v", c.handle, got, c.want)
		}
	}
}
