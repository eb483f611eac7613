package client

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a fresh id on every outgoing request.
const RequestIDHeader = "X-Request-ID"

type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(r)
}

// storeTokenSource reads the token on every call, so a logout or a new login
// takes effect for the next request without rebuilding the client.
type storeTokenSource struct {
	src TokenSource
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	tok := s.src.Token()
	if tok == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}
