package board

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
)

// Handler serves the kanban board and delivery calendar views.
type Handler struct {
	logger  *slog.Logger
	service *orders.OrderService
	loc     *time.Location
	now     func() time.Time
}

// NewHandler constructs a board handler. The clock is injectable for tests.
func NewHandler(logger *slog.Logger, service *orders.OrderService, loc *time.Location) *Handler {
	return &Handler{logger: logger, service: service, loc: loc, now: time.Now}
}

// MountRoutes attaches the projection routes under the orders prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/board", h.ShowBoard)
		r.Get("/calendar", h.ShowCalendar)
	})
}

func (h *Handler) ShowBoard(w http.ResponseWriter, r *http.Request) {
	list, err := h.projectionOrders(r)
	if err != nil {
		h.logger.Error("board orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, Project(list, h.loc))
}

func (h *Handler) ShowCalendar(w http.ResponseWriter, r *http.Request) {
	list, err := h.projectionOrders(r)
	if err != nil {
		h.logger.Error("calendar orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, Calendar(list, h.now(), h.loc))
}

func (h *Handler) projectionOrders(r *http.Request) ([]orders.Order, error) {
	userID, _ := auth.CurrentUserID(r)
	actor := orders.Actor{UserID: userID, IsAdmin: auth.CurrentRole(r) == auth.RoleAdmin}
	return h.service.ProjectionOrders(r.Context(), actor)
}
