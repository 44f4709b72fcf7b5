// Package client is the XRPC HTTP client for the personal data server.
// It exposes the documented request/response contracts (record CRUD and the
// session calls) and maps transport failures into the domain taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"

	anchor "github.com/dropanchor/anchor-go"
	"github.com/dropanchor/anchor-go/internal/domain"
	"github.com/dropanchor/anchor-go/schemas"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "anchor-go/0.1"
)

type Client struct {
	client    *http.Client
	cache     *cache.Cache
	host      string
	userAgent string
}

func New(host string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
		host:      strings.TrimSuffix(host, "/"),
		userAgent: defaultUserAgent,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// xrpcError is the error body every XRPC endpoint shares.
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, nsid string, params url.Values, token string, body, out any) error {
	endpoint := c.host + "/xrpc/" + nsid
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var xe xrpcError
		_ = json.NewDecoder(resp.Body).Decode(&xe)
		if resp.StatusCode == http.StatusNotFound || xe.Error == "RecordNotFound" {
			return domain.NotFoundError{Resource: "record"}
		}
		return domain.ServerError{Status: resp.StatusCode, Code: xe.Error, Message: xe.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.InvalidFormatError{Detail: fmt.Sprintf("bad response from %s: %v", nsid, err)}
		}
	}

	return nil
}

// CreateRecord writes a tagged record into the repo and returns its strong
// reference. Used for address, check-in and post records alike; the
// collection id tells them apart.
func (c *Client) CreateRecord(ctx context.Context, token, repo, collection string, record schemas.Record) (anchor.StrongRef, error) {
	raw, err := schemas.Marshal(record)
	if err != nil {
		return anchor.StrongRef{}, domain.InvalidFormatError{Detail: err.Error()}
	}

	body := map[string]any{
		"repo":       repo,
		"collection": collection,
		"record":     raw,
	}

	var ref anchor.StrongRef
	if err := c.do(ctx, http.MethodPost, "com.atproto.repo.createRecord", nil, token, body, &ref); err != nil {
		return anchor.StrongRef{}, err
	}
	return ref, nil
}

// DeleteRecord removes a record. The response carries no meaningful body.
func (c *Client) DeleteRecord(ctx context.Context, token, repo, collection, rkey string) error {
	body := map[string]any{
		"repo":       repo,
		"collection": collection,
		"rkey":       rkey,
	}
	return c.do(ctx, http.MethodPost, "com.atproto.repo.deleteRecord", nil, token, body, nil)
}

// GetRecord fetches a record envelope. Cached reads serve rendering; pass
// fresh=true to bypass the cache, which integrity verification must do.
func (c *Client) GetRecord(ctx context.Context, repo, collection, rkey string, fresh bool) (*anchor.RecordEnvelope, error) {
	cacheKey := "record:" + anchor.ComposeATURI(repo, collection, rkey)
	if !fresh {
		if x, found := c.cache.Get(cacheKey); found {
			env := x.(anchor.RecordEnvelope)
			return &env, nil
		}
	}

	params := url.Values{}
	params.Set("repo", repo)
	params.Set("collection", collection)
	params.Set("rkey", rkey)

	var env anchor.RecordEnvelope
	if err := c.do(ctx, http.MethodGet, "com.atproto.repo.getRecord", params, "", nil, &env); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, env, cache.DefaultExpiration)
	return &env, nil
}

// sessionResponse is the wire shape shared by the session endpoints.
type sessionResponse struct {
	Handle     string `json:"handle"`
	DID        string `json:"did"`
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Active     *bool  `json:"active,omitempty"`
}

func (sr sessionResponse) credential() *domain.Credential {
	expiry, sid := tokenClaims(sr.AccessJwt)
	return &domain.Credential{
		Handle:       sr.Handle,
		DID:          sr.DID,
		AccessToken:  sr.AccessJwt,
		RefreshToken: sr.RefreshJwt,
		SessionID:    sid,
		Expiry:       expiry,
	}
}

// Login opens a fresh session with an identifier and app password.
func (c *Client) Login(ctx context.Context, identifier, password string) (*domain.Credential, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var sr sessionResponse
	if err := c.do(ctx, http.MethodPost, "com.atproto.server.createSession", nil, "", body, &sr); err != nil {
		return nil, err
	}
	return sr.credential(), nil
}

// Validate confirms the access token is still accepted server-side and
// returns the credential with refreshed identity fields.
func (c *Client) Validate(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	var sr sessionResponse
	if err := c.do(ctx, http.MethodGet, "com.atproto.server.getSession", nil, cred.AccessToken, nil, &sr); err != nil {
		return nil, err
	}
	if sr.Active != nil && !*sr.Active {
		return nil, domain.ServerError{Status: http.StatusUnauthorized, Code: "SessionInactive", Message: "session is no longer active"}
	}

	updated := *cred
	updated.Handle = sr.Handle
	updated.DID = sr.DID
	return &updated, nil
}

// Refresh swaps the refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if cred == nil || cred.RefreshToken == "" {
		return nil, domain.ErrMissingCredentials
	}

	var sr sessionResponse
	if err := c.do(ctx, http.MethodPost, "com.atproto.server.refreshSession", nil, cred.RefreshToken, nil, &sr); err != nil {
		return nil, err
	}
	return sr.credential(), nil
}

// SignOut revokes the session server-side.
func (c *Client) SignOut(ctx context.Context, cred *domain.Credential) error {
	if cred == nil || cred.RefreshToken == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "com.atproto.server.deleteSession", nil, cred.RefreshToken, nil, nil)
}

// tokenClaims extracts expiry and session id from an access token without
// verifying it; signature verification is the server's job.
func tokenClaims(token string) (time.Time, string) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, ""
	}

	var expiry time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}
	sid, _ := claims["jti"].(string)
	return expiry, sid
}
