package client

import (
	"net/http"

	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/google/uuid"
)

// authTransport attaches the current bearer token and a fresh request id to
// every outbound request.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())

	if token := t.tokens(req.Context()); token != "" {
		cloned.Header.Set("Authorization", "Bearer "+token)
	}
	if cloned.Header.Get(common.RequestIDHeaderName) == "" {
		cloned.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	return t.base.RoundTrip(cloned)
}
