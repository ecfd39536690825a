package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"chainid/internal/contract"
	"chainid/internal/contract/identityregistry/handler/mocks"
	"chainid/internal/ledger"
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
	"chainid/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

var (
	caller = testutil.Address(0xA)
	user   = testutil.Address(0x11)
)

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil).Register(s.router)
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	return s.do(testutil.WithCaller(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), caller))
}

func (s *HandlerSuite) TestDeploy() {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.service.EXPECT().Deploy(gomock.Any(), caller).Return(&ledger.Meta{
		AppID:     3,
		Kind:      id.KindIdentityRegistry,
		Creator:   caller,
		CreatedAt: created,
	}, nil)

	rr := s.post("/v1/identity-registry", nil)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[DeployResponse](s.T(), rr)
	s.Equal(id.AppID(3), resp.AppID)
	s.Equal(caller, resp.Admin)
	s.Equal(id.KindIdentityRegistry, resp.Kind)
}

func (s *HandlerSuite) TestRegisterIdentity() {
	s.Run("success", func() {
		s.service.EXPECT().RegisterIdentity(gomock.Any(), id.AppID(1), caller, user, uint64(2)).Return(true, nil)

		rr := s.post("/v1/identity-registry/1/register_identity", map[string]any{
			"user_address":       user.String(),
			"verification_level": 2,
		})

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.True(testutil.UnmarshalCall[bool](s.T(), rr, contract.MethodRegisterIdentity))
	})

	s.Run("guard failures map to their codes", func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{contract.ErrInvalidLevel, http.StatusBadRequest, "invalid_level"},
			{contract.ErrContractPaused, http.StatusConflict, "contract_paused"},
			{contract.ErrUnauthorized, http.StatusForbidden, "forbidden"},
			{dErrors.New(dErrors.CodeNotFound, "app not found"), http.StatusNotFound, "not_found"},
		}
		for _, tc := range cases {
			s.service.EXPECT().RegisterIdentity(gomock.Any(), id.AppID(1), caller, user, uint64(4)).Return(false, tc.err)
			rr := s.post("/v1/identity-registry/1/register_identity", map[string]any{
				"user_address":       user.String(),
				"verification_level": 4,
			})
			testutil.AssertError(s.T(), rr, tc.status, tc.code)
		}
	})

	s.Run("bad input never reaches the contract", func() {
		bodies := map[string]any{
			"negative level":  map[string]any{"user_address": user.String(), "verification_level": -1},
			"fractional":      map[string]any{"user_address": user.String(), "verification_level": 1.5},
			"bad address":     map[string]any{"user_address": "not-an-address", "verification_level": 1},
			"missing address": map[string]any{"verification_level": 1},
		}
		for name, body := range bodies {
			rr := s.post("/v1/identity-registry/1/register_identity", body)
			s.Equal(http.StatusBadRequest, rr.Code, name)
			s.Equal("bad_request", testutil.UnmarshalErrorResponse(s.T(), rr)["error"], name)
		}
	})

	s.Run("missing level is a validation error", func() {
		rr := s.post("/v1/identity-registry/1/register_identity", map[string]any{"user_address": user.String()})
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("invalid app id", func() {
		for _, app := range []string{"0", "abc", "-1"} {
			rr := s.post("/v1/identity-registry/"+app+"/register_identity", map[string]any{
				"user_address":       user.String(),
				"verification_level": 1,
			})
			testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
		}
	})
}

func (s *HandlerSuite) TestAdminMethods() {
	newAdmin := testutil.Address(0xB)
	s.service.EXPECT().SetAdmin(gomock.Any(), id.AppID(5), caller, newAdmin).Return(true, nil)
	s.service.EXPECT().PauseContract(gomock.Any(), id.AppID(5), caller).Return(true, nil)
	s.service.EXPECT().UnpauseContract(gomock.Any(), id.AppID(5), caller).Return(false, contract.ErrUnauthorized)

	rr := s.post("/v1/identity-registry/5/set_admin", map[string]string{"new_admin": newAdmin.String()})
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(testutil.UnmarshalCall[bool](s.T(), rr, contract.MethodSetAdmin))

	rr = s.post("/v1/identity-registry/5/pause_contract", nil)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(testutil.UnmarshalCall[bool](s.T(), rr, contract.MethodPauseContract))

	rr = s.post("/v1/identity-registry/5/unpause_contract", nil)
	testutil.AssertError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *HandlerSuite) TestReadMethods() {
	s.service.EXPECT().GetTotalVerifiedUsers(gomock.Any(), id.AppID(2)).Return(uint64(41), nil)
	s.service.EXPECT().GetAdmin(gomock.Any(), id.AppID(2)).Return(caller, nil)
	s.service.EXPECT().IsPaused(gomock.Any(), id.AppID(2)).Return(true, nil)

	rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/v1/identity-registry/2/get_total_verified_users"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal(uint64(41), testutil.UnmarshalCall[uint64](s.T(), rr, contract.MethodGetTotalVerifiedUsers))

	rr = s.do(testutil.NewRequest(s.T(), http.MethodGet, "/v1/identity-registry/2/get_admin"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal(caller.String(), testutil.UnmarshalCall[string](s.T(), rr, contract.MethodGetAdmin))

	rr = s.do(testutil.NewRequest(s.T(), http.MethodGet, "/v1/identity-registry/2/is_paused"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(testutil.UnmarshalCall[bool](s.T(), rr, contract.MethodIsPaused))
}

func (s *HandlerSuite) TestVerifyAndHello() {
	s.service.EXPECT().VerifyIdentity(gomock.Any(), id.AppID(2), user).Return(true, nil)
	s.service.EXPECT().Hello(gomock.Any(), id.AppID(2), "World").Return("Hello, World", nil)

	rr := s.post("/v1/identity-registry/2/verify_identity", map[string]string{"user_address": user.String()})
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(testutil.UnmarshalCall[bool](s.T(), rr, contract.MethodVerifyIdentity))

	rr = s.post("/v1/identity-registry/2/hello", map[string]string{"name": "World"})
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("Hello, World", testutil.UnmarshalCall[string](s.T(), rr, contract.MethodHello))
}

// Justification: caller routes sit behind the auth middleware; getters do not.
func (s *HandlerSuite) TestRequireCallerGuardsCallRoutes() {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	router := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), deny).Register(router)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/identity-registry/1/pause_contract", nil))
	s.Equal(http.StatusUnauthorized, rr.Code)

	s.service.EXPECT().IsPaused(gomock.Any(), id.AppID(1)).Return(false, nil)
	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/identity-registry/1/is_paused"))
	s.Equal(http.StatusOK, rr.Code)
}
