package anchor

import (
	"fmt"
	"strings"
)

// ParseATURI splits an "at://authority/collection/rkey" URI into its parts.
func ParseATURI(uri string) (authority, collection, rkey string, err error) {
	rest, ok := strings.CutPrefix(uri, "at://")
	if !ok {
		return "", "", "", fmt.Errorf("unsupported uri scheme: %s", uri)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("invalid at uri: %s", uri)
	}

	return parts[0], parts[1], parts[2], nil
}

// ComposeATURI builds an "at://" URI from its parts.
func ComposeATURI(authority, collection, rkey string) string {
	return "at://" + authority + "/" + collection + "/" + rkey
}

// IsDID reports whether s looks like a DID ("did:method:...").
func IsDID(s string) bool {
	parts := strings.SplitN(s, ":", 3)
	return len(parts) == 3 && parts[0] == "did" && parts[1] != "" && parts[2] != ""
}

// disallowedTLDs are never valid handle suffixes on the network.
var disallowedTLDs = map[string]bool{
	"invalid":   true,
	"localhost": true,
	"local":     true,
	"example":   true,
}

// IsValidHandle reports whether s is a plausible account handle: at least
// two dot-separated DNS labels, with a letters-only TLD of two or more
// characters outside the reserved set.
func IsValidHandle(s string) bool {
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if !isDNSLabel(label) {
			return false
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 || !isAlpha(tld) {
		return false
	}

	return !disallowedTLDs[strings.ToLower(tld)]
}

func isDNSLabel(s string) bool {
	if s == "" || len(s) > 63 {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
