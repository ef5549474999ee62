package halo

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"bendigotelco/connecthub/internal/secrets"
	"bendigotelco/connecthub/pkg/apperr"
)

// expiryMargin is the safety window before the token's real expiry during
// which it is already treated as expired.
const expiryMargin = 60 * time.Second

// tokenState models the token lifecycle:
//
//	noToken --authenticate--> valid
//	valid   --(now >= expiresAt - margin)--> expired
//	valid   --(response 401)--> expired
//	expired --authenticate--> valid
type tokenState int

const (
	stateNoToken tokenState = iota
	stateValid
	stateExpired
)

// authToken is the process-wide bearer token. It lives in an atomic holder
// with last-writer-wins semantics: concurrent re-authentications are
// tolerated, the later success simply replaces the earlier one.
type authToken struct {
	value     string
	expiresAt time.Time
}

func (c *Client) tokenStateAt(now time.Time) (tokenState, string) {
	tok := c.token.Load()
	if tok == nil || tok.value == "" {
		return stateNoToken, ""
	}
	if !now.Before(tok.expiresAt.Add(-expiryMargin)) {
		return stateExpired, tok.value
	}
	return stateValid, tok.value
}

// invalidateToken forces the expired state after an authentication-rejected
// response, so the next call re-authenticates.
func (c *Client) invalidateToken() {
	tok := c.token.Load()
	if tok == nil {
		return
	}
	c.token.Store(&authToken{value: tok.value, expiresAt: time.Time{}})
}

// authenticate performs the client-credentials exchange against the token
// endpoint and installs the new token.
func (c *Client) authenticate(ctx context.Context, bundle *secrets.Bundle) (string, error) {
	cfg := clientcredentials.Config{
		ClientID:     bundle.ClientID,
		ClientSecret: bundle.ClientSecret,
		TokenURL:     strings.TrimRight(bundle.APIBaseURL, "/") + "/auth/token",
		Scopes:       []string{"all"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cfg.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", apperr.Wrap(apperr.KindAuthentication, "token endpoint rejected credentials", err)
		}
		return "", classifyTransportError(err, "token endpoint unreachable")
	}

	c.token.Store(&authToken{value: tok.AccessToken, expiresAt: tok.Expiry})
	return tok.AccessToken, nil
}

// ensureToken returns a bearer token, authenticating first unless the
// current one is still valid.
func (c *Client) ensureToken(ctx context.Context, bundle *secrets.Bundle) (string, error) {
	if state, value := c.tokenStateAt(c.now()); state == stateValid {
		return value, nil
	}
	return c.authenticate(ctx, bundle)
}
