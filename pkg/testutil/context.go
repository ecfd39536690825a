package testutil

import (
	"net/http"

	id "chainid/pkg/domain"
	"chainid/pkg/requestcontext"
)

// WithCaller places caller on the request context the way the auth
// middleware does for an authenticated request.
func WithCaller(req *http.Request, caller id.Address) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// Address builds a deterministic test address whose bytes are all seed.
func Address(seed byte) id.Address {
	var addr id.Address
	for i := range addr {
		addr[i] = seed
	}
	return addr
}
