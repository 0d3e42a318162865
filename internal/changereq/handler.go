package changereq

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Handler serves the change request endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditLogger
}

// NewHandler constructs a change request handler.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, audit: audit}
}

// MountOrderRoutes attaches the per-order routes under /orders/{id}.
func (h *Handler) MountOrderRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/{id}/change-requests", h.ListByOrder)
		r.Post("/{id}/change-requests", h.Create)
	})
}

// MountRoutes attaches the review queue and decision routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/pending", h.ListPending)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

func actorFrom(r *http.Request) orders.Actor {
	id, _ := auth.CurrentUserID(r)
	return orders.Actor{UserID: id, IsAdmin: auth.CurrentRole(r) == auth.RoleAdmin}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	cr, err := h.service.Create(r.Context(), actorFrom(r), orderID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "changereq.create", cr.ID, nil)
	httpx.JSON(w, http.StatusCreated, cr)
}

func (h *Handler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	list, err := h.service.ListByOrder(r.Context(), actorFrom(r), orderID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if list == nil {
		list = []ChangeRequest{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPending(r.Context(), actorFrom(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if list == nil {
		list = []ChangeRequest{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid change request id")
		return
	}
	req := DecisionRequest{}
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
		if fields := shared.ValidateStruct(req); fields != nil {
			httpx.ValidationProblem(w, fields)
			return
		}
	}

	var cr ChangeRequest
	if approve {
		cr, err = h.service.Approve(r.Context(), actorFrom(r), id, req)
	} else {
		cr, err = h.service.Reject(r.Context(), actorFrom(r), id, req)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "changereq."+cr.Status, cr.ID, map[string]any{
		"order_id":          cr.OrderID,
		"delta_price_cents": cr.DeltaPriceCents,
		"delta_days":        cr.DeltaDays,
	})
	httpx.JSON(w, http.StatusOK, cr)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, orders.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, orders.ErrNotOwner), errors.Is(err, shared.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have access to this order")
	case errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrOrderClosed):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("change request", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64, meta map[string]any) {
	actorID, _ := auth.CurrentUserID(r)
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "change_request",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
