package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/estimate"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Handler serves the order endpoints.
type Handler struct {
	logger  *slog.Logger
	service *OrderService
	audit   *shared.AuditLogger
}

// NewHandler constructs an order handler.
func NewHandler(logger *slog.Logger, service *OrderService, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, audit: audit}
}

// MountRoutes attaches order routes. Everything requires a session; the
// service layer enforces ownership and role per operation.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Show)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/complete", h.Complete)
	})
}

func actorFrom(r *http.Request) Actor {
	id, _ := auth.CurrentUserID(r)
	return Actor{UserID: id, IsAdmin: auth.CurrentRole(r) == auth.RoleAdmin}
}

type listResponse struct {
	Data       []OrderWithClient `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.PageParams(r, 20, 100)
	req := ListOrdersRequest{Page: page, Limit: limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := OrderStatus(raw)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status "+raw)
			return
		}
		req.Status = &status
	}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid client_id")
			return
		}
		req.ClientID = &id
	}

	list, pagination, err := h.service.List(r.Context(), actorFrom(r), req)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	if list == nil {
		list = []OrderWithClient{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: list, Pagination: pagination})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	order, err := h.service.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	order, err := h.service.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "orders.create", order.ID, map[string]any{
		"estimated_price_cents": order.EstimatedPriceCents,
		"estimated_days":        order.EstimatedDays,
	})
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	order, err := h.service.Transition(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "orders.status", order.ID, map[string]any{"status": order.Status})
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}
	var req CompleteOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	order, err := h.service.Complete(r.Context(), actorFrom(r), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "orders.complete", order.ID, map[string]any{
		"final_price_cents": order.FinalPriceCents,
		"final_days":        order.FinalDays,
	})
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNotOwner), errors.Is(err, shared.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have access to this order")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, estimate.ErrUnknownService), errors.Is(err, estimate.ErrUnknownComplexity),
		errors.Is(err, estimate.ErrForeignAddon), errors.Is(err, estimate.ErrInactive):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64, meta map[string]any) {
	actorID, _ := auth.CurrentUserID(r)
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "order",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	}); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
