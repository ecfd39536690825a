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

// Service defines the interface for payment processor operations.
type Service interface {
	Deploy(ctx context.Context, creator id.Address) (*ledger.Meta, error)
	ProcessPayment(ctx context.Context, app id.AppID, caller, recipient id.Address, amount uint64) (bool, error)
	PauseContract(ctx context.Context, app id.AppID, caller id.Address) (bool, error)
	GetTotalPayments(ctx context.Context, app id.AppID) (uint64, error)
	GetAdmin(ctx context.Context, app id.AppID) (id.Address, error)
}

// Handler exposes payment processor deployments over HTTP.
type Handler struct {
	service       Service
	logger        *slog.Logger
	requireCaller func(http.Handler) http.Handler
}

func New(service Service, logger *slog.Logger, requireCaller func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		requireCaller: requireCaller,
	}
}

// Register mounts the processor routes. There is no unpause route.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/payment-processor", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.requireCaller != nil {
				r.Use(h.requireCaller)
			}
			r.Post("/", h.HandleDeploy)
			r.Post("/{app_id}/"+contract.MethodProcessPayment, h.HandleProcessPayment)
			r.Post("/{app_id}/"+contract.MethodPauseContract, h.HandlePauseContract)
		})
		r.Get("/{app_id}/"+contract.MethodGetTotalPayments, h.HandleGetTotalPayments)
		r.Get("/{app_id}/"+contract.MethodGetAdmin, h.HandleGetAdmin)
	})
}

// HandleDeploy handles POST /v1/payment-processor. The caller becomes admin.
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

	h.logger.InfoContext(ctx, "payment processor deployed",
		"request_id", requestcontext.RequestID(ctx),
		"app_id", meta.AppID,
		"admin", caller,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromMeta(meta))
}

func (h *Handler) HandleProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProcessPaymentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.ProcessPayment(ctx, app, caller, req.recipient, *req.Amount)
	respond(w, contract.MethodProcessPayment, result, err)
}

func (h *Handler) HandlePauseContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.PauseContract(ctx, app, caller)
	respond(w, contract.MethodPauseContract, result, err)
}

func (h *Handler) HandleGetTotalPayments(w http.ResponseWriter, r *http.Request) {
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetTotalPayments(r.Context(), app)
	respond(w, contract.MethodGetTotalPayments, result, err)
}

func (h *Handler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	app, ok := parseApp(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetAdmin(r.Context(), app)
	respond(w, contract.MethodGetAdmin, result, err)
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
