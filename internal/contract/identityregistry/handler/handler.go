package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chainid/internal/contract"
	"chainid/internal/ledger"
	id "chainid/pkg/domain"
	"chainid/pkg/platform/httputil"
	"chainid/pkg/requestcontext"
)

// Service defines the interface for identity registry operations.
type Service interface {
	Deploy(ctx context.Context, creator id.Address) (*ledger.Meta, error)
	RegisterIdentity(ctx context.Context, app id.AppID, caller, user id.Address, level uint64) (bool, error)
	VerifyIdentity(ctx context.Context, app id.AppID, user id.Address) (bool, error)
	GetTotalVerifiedUsers(ctx context.Context, app id.AppID) (uint64, error)
	SetAdmin(ctx context.Context, app id.AppID, caller, newAdmin id.Address) (bool, error)
	PauseContract(ctx context.Context, app id.AppID, caller id.Address) (bool, error)
	UnpauseContract(ctx context.Context, app id.AppID, caller id.Address) (bool, error)
	GetAdmin(ctx context.Context, app id.AppID) (id.Address, error)
	IsPaused(ctx context.Context, app id.AppID) (bool, error)
	Hello(ctx context.Context, app id.AppID, name string) (string, error)
}

// Handler exposes identity registry deployments over HTTP.
type Handler struct {
	service       Service
	logger        *slog.Logger
	requireCaller func(http.Handler) http.Handler
}

// New constructs a handler. requireCaller guards the routes that act as a
// caller; nil leaves them unguarded, for tests that set the caller directly.
func New(service Service, logger *slog.Logger, requireCaller func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		requireCaller: requireCaller,
	}
}

// Register mounts the registry routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/identity-registry", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.requireCaller != nil {
				r.Use(h.requireCaller)
			}
			r.Post("/", h.HandleDeploy)
			r.Post("/{app_id}/"+contract.MethodRegisterIdentity, h.HandleRegisterIdentity)
			r.Post("/{app_id}/"+contract.MethodVerifyIdentity, h.HandleVerifyIdentity)
			r.Post("/{app_id}/"+contract.MethodSetAdmin, h.HandleSetAdmin)
			r.Post("/{app_id}/"+contract.MethodPauseContract, h.HandlePauseContract)
			r.Post("/{app_id}/"+contract.MethodUnpauseContract, h.HandleUnpauseContract)
			r.Post("/{app_id}/"+contract.MethodHello, h.HandleHello)
		})
		r.Get("/{app_id}/"+contract.MethodGetTotalVerifiedUsers, h.HandleGetTotalVerifiedUsers)
		r.Get("/{app_id}/"+contract.MethodGetAdmin, h.HandleGetAdmin)
		r.Get("/{app_id}/"+contract.MethodIsPaused, h.HandleIsPaused)
	})
}

// HandleDeploy handles POST /v1/identity-registry. The caller becomes admin.
func (h *Handler) HandleDeploy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	meta, err := h.service.Deploy(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity registry deployed",
		"request_id", requestcontext.RequestID(ctx),
		"app_id", meta.AppID,
		"admin", caller,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromMeta(meta))
}

func (h *Handler) HandleRegisterIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, caller, ok := h.callTarget(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterIdentityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.RegisterIdentity(ctx, app, caller, req.userAddress, *req.VerificationLevel)
	respond(w, contract.MethodRegisterIdentity, result, err)
}

func (h *Handler) HandleVerifyIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, _, ok := h.callTarget(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyIdentityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.VerifyIdentity(ctx, app, req.userAddress)
	respond(w, contract.MethodVerifyIdentity, result, err)
}

func (h *Handler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, caller, ok := h.callTarget(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetAdminRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.SetAdmin(ctx, app, caller, req.newAdmin)
	respond(w, contract.MethodSetAdmin, result, err)
}

func (h *Handler) HandlePauseContract(w http.ResponseWriter, r *http.Request) {
	app, caller, ok := h.callTarget(w, r)
	if !ok {
		return
	}
	result, err := h.service.PauseContract(r.Context(), app, caller)
	respond(w, contract.MethodPauseContract, result, err)
}

func (h *Handler) HandleUnpauseContract(w http.ResponseWriter, r *http.Request) {
	app, caller, ok := h.callTarget(w, r)
	if !ok {
		return
	}
	result, err := h.service.UnpauseContract(r.Context(), app, caller)
	respond(w, contract.MethodUnpauseContract, result, err)
}

func (h *Handler) HandleHello(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, _, ok := h.callTarget(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[HelloRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.Hello(ctx, app, req.Name)
	respond(w, contract.MethodHello, result, err)
}

func (h *Handler) HandleGetTotalVerifiedUsers(w http.ResponseWriter, r *http.Request) {
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetTotalVerifiedUsers(r.Context(), app)
	respond(w, contract.MethodGetTotalVerifiedUsers, result, err)
}

func (h *Handler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetAdmin(r.Context(), app)
	respond(w, contract.MethodGetAdmin, result, err)
}

func (h *Handler) HandleIsPaused(w http.ResponseWriter, r *http.Request) {
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	result, err := h.service.IsPaused(r.Context(), app)
	respond(w, contract.MethodIsPaused, result, err)
}

// callTarget resolves the app from the path and the authenticated caller.
func (h *Handler) callTarget(w http.ResponseWriter, r *http.Request) (id.AppID, id.Address, bool) {
	app, ok := parseApp(w, r)
	if !ok {
		return 0, id.Address{}, false
	}
	caller, err := httputil.RequireCaller(r.Context(), h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return 0, id.Address{}, false
	}
	return app, caller, true
}

func parseApp(w http.ResponseWriter, r *http.Request) (id.AppID, bool) {
	app, err := id.ParseAppID(chi.URLParam(r, "app_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return app, true
}

func respond(w http.ResponseWriter, method string, result any, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CallResponse{Method: method, Return: result})
}
