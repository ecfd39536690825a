package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chainid/internal/ledger"
	"chainid/internal/outbox"
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
	"chainid/pkg/platform/httputil"
)

//go:generate mockgen -source=handlers_apps.go -destination=mocks/mocks.go -package=mocks AppDirectory,OutboxReader

// AppDirectory looks up deployments.
type AppDirectory interface {
	App(ctx context.Context, app id.AppID) (*ledger.Meta, error)
	Apps(ctx context.Context) ([]*ledger.Meta, error)
}

// OutboxReader exposes outbox state to operators.
type OutboxReader interface {
	CountPending(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*outbox.Entry, error)
}

const (
	defaultOutboxLimit = 50
	maxOutboxLimit     = 500
)

// AppsHandler serves deployment metadata and the operator views.
type AppsHandler struct {
	apps   AppDirectory
	outbox OutboxReader
	logger *slog.Logger
}

// NewAppsHandler builds the handler. A nil outbox reports an empty queue.
func NewAppsHandler(apps AppDirectory, outbox OutboxReader, logger *slog.Logger) *AppsHandler {
	return &AppsHandler{apps: apps, outbox: outbox, logger: logger}
}

// Register mounts GET /v1/apps/{app_id}.
func (h *AppsHandler) Register(r chi.Router) {
	r.Get("/v1/apps/{app_id}", h.HandleGetApp)
}

// RegisterOps mounts the operator routes; the caller wraps them with the
// operator guard.
func (h *AppsHandler) RegisterOps(r chi.Router) {
	r.Get("/ops/apps", h.HandleListApps)
	r.Get("/ops/outbox", h.HandleOutbox)
}

type AppResponse struct {
	AppID     id.AppID        `json:"app_id"`
	Kind      id.ContractKind `json:"kind"`
	Creator   id.Address      `json:"creator"`
	CreatedAt time.Time       `json:"created_at"`
}

type AppListResponse struct {
	Apps  []AppResponse `json:"apps"`
	Total int           `json:"total"`
}

type OutboxEntryResponse struct {
	ID          string     `json:"id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   string     `json:"event_type"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type OutboxResponse struct {
	Pending int64                 `json:"pending"`
	Recent  []OutboxEntryResponse `json:"recent"`
}

func (h *AppsHandler) HandleGetApp(w http.ResponseWriter, r *http.Request) {
	app, err := id.ParseAppID(chi.URLParam(r, "app_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	meta, err := h.apps.App(r.Context(), app)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAppResponse(meta))
}

// HandleListApps lists every deployment. ?kind keeps only deployments of
// that contract kind.
func (h *AppsHandler) HandleListApps(w http.ResponseWriter, r *http.Request) {
	var kind id.ContractKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := id.ParseContractKind(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		kind = k
	}
	metas, err := h.apps.Apps(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list apps", "error", err)
		httputil.WriteError(w, err)
		return
	}
	resp := AppListResponse{Apps: make([]AppResponse, 0, len(metas))}
	for _, meta := range metas {
		if kind != "" && meta.Kind != kind {
			continue
		}
		resp.Apps = append(resp.Apps, toAppResponse(meta))
	}
	resp.Total = len(resp.Apps)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleOutbox reports the pending count and the most recent entries.
// ?limit caps the list at maxOutboxLimit.
func (h *AppsHandler) HandleOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultOutboxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxOutboxLimit)
	}

	resp := OutboxResponse{Recent: []OutboxEntryResponse{}}
	if h.outbox == nil {
		httputil.WriteJSON(w, http.StatusOK, resp)
		return
	}

	pending, err := h.outbox.CountPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count outbox entries", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "outbox unavailable"))
		return
	}
	entries, err := h.outbox.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list outbox entries", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "outbox unavailable"))
		return
	}

	resp.Pending = pending
	for _, e := range entries {
		resp.Recent = append(resp.Recent, OutboxEntryResponse{
			ID:          e.ID.String(),
			AggregateID: e.AggregateID,
			EventType:   e.EventType,
			CreatedAt:   e.CreatedAt,
			ProcessedAt: e.ProcessedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func toAppResponse(meta *ledger.Meta) AppResponse {
	return AppResponse{
		AppID:     meta.AppID,
		Kind:      meta.Kind,
		Creator:   meta.Creator,
		CreatedAt: meta.CreatedAt,
	}
}
