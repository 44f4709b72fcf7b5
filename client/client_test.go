package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropanchor/anchor-go/internal/domain"
	"github.com/dropanchor/anchor-go/schemas"
)

func signedToken(t *testing.T, exp time.Time, jti string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"jti": jti,
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestCreateRecord(t *testing.T) {
	var gotAuth string
	var gotBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xrpc/com.atproto.repo.createRecord", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{
			"uri": "at://did:plc:abc/community.lexicon.location.address/3kxyz",
			"cid": "bafyaddr",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ref, err := c.CreateRecord(context.Background(), "tok", "did:plc:abc", schemas.CollectionAddress, schemas.Address{Name: "Pier 7"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "bafyaddr", ref.CID)

	var record map[string]any
	require.NoError(t, json.Unmarshal(gotBody["record"], &record))
	assert.Equal(t, schemas.CollectionAddress, record["$type"])
	assert.Equal(t, "Pier 7", record["name"])
}

func TestErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "InvalidRequest",
			"message": "bad record",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetRecord(context.Background(), "did:plc:abc", schemas.CollectionAddress, "rk", true)
	require.Error(t, err)

	var se domain.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "InvalidRequest", se.Code)
	assert.Equal(t, "bad record", se.Message)
}

func TestRecordNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "RecordNotFound"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetRecord(context.Background(), "did:plc:abc", schemas.CollectionAddress, "rk", true)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL)
	_, err := c.GetRecord(context.Background(), "did:plc:abc", schemas.CollectionAddress, "rk", true)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
}

func TestGetRecordCaching(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(map[string]any{
			"uri":   "at://did:plc:abc/app.dropanchor.checkin/rk",
			"cid":   "bafy1",
			"value": map[string]any{"$type": schemas.CollectionCheckin},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.GetRecord(ctx, "did:plc:abc", schemas.CollectionCheckin, "rk", false)
	require.NoError(t, err)
	_, err = c.GetRecord(ctx, "did:plc:abc", schemas.CollectionCheckin, "rk", false)
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second cached read must not hit the server")

	_, err = c.GetRecord(ctx, "did:plc:abc", schemas.CollectionCheckin, "rk", true)
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "fresh read must bypass the cache")
}

func TestLoginDerivesExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	access := signedToken(t, exp, "sess-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xrpc/com.atproto.server.createSession", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"handle":     "alice.bsky.social",
			"did":        "did:plc:abc",
			"accessJwt":  access,
			"refreshJwt": "refresh-token",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	cred, err := c.Login(context.Background(), "alice.bsky.social", "app-password")
	require.NoError(t, err)

	assert.Equal(t, "did:plc:abc", cred.DID)
	assert.Equal(t, "sess-1", cred.SessionID)
	assert.True(t, cred.Expiry.Equal(exp), "expiry %v want %v", cred.Expiry, exp)
}

func TestRefreshWithoutToken(t *testing.T) {
	c := New("https://pds.test")
	_, err := c.Refresh(context.Background(), &domain.Credential{})
	assert.True(t, errors.Is(err, domain.ErrMissingCredentials))
}
