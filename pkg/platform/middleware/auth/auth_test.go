package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	id "chainid/pkg/domain"
	"chainid/pkg/requestcontext"
)

type stubValidator struct {
	claims *CallerClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*CallerClaims, error) { return s.claims, s.err }

// RequireCallerSuite verifies caller identity reaches the context only for valid tokens.
//
// Justification: Admin authority is decided from this value, so a request
// must never reach a contract with an unauthenticated or malformed caller.
type RequireCallerSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestRequireCallerSuite(t *testing.T) {
	suite.Run(t, new(RequireCallerSuite))
}

func (s *RequireCallerSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *RequireCallerSuite) serve(v TokenValidator, header string) (*httptest.ResponseRecorder, *id.Address) {
	var seen *id.Address
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller, ok := requestcontext.Caller(r.Context()); ok {
			seen = &caller
		}
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	RequireCaller(v, s.logger)(next).ServeHTTP(w, req)
	return w, seen
}

func (s *RequireCallerSuite) TestValidToken() {
	var caller id.Address
	caller[5] = 9
	w, seen := s.serve(stubValidator{claims: &CallerClaims{Subject: caller.String()}}, "Bearer good")

	s.Equal(http.StatusOK, w.Code)
	s.Require().NotNil(seen)
	s.Equal(caller, *seen)
}

func (s *RequireCallerSuite) TestRejections() {
	s.Run("missing header", func() {
		w, seen := s.serve(stubValidator{}, "")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Nil(seen)
	})

	s.Run("non-bearer scheme", func() {
		w, _ := s.serve(stubValidator{}, "Basic Zm9vOmJhcg==")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("validator error", func() {
		w, seen := s.serve(stubValidator{err: errors.New("bad signature")}, "Bearer bad")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Nil(seen)
		assert.Contains(s.T(), w.Body.String(), "Invalid or expired token")
	})

	s.Run("subject is not an address", func() {
		w, seen := s.serve(stubValidator{claims: &CallerClaims{Subject: "alice"}}, "Bearer odd")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Nil(seen)
	})
}
