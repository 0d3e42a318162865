package estimate

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Handler serves the quote endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs an estimate handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches estimate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Post("/", h.CreateQuote)
	})
}

// CreateQuote prices a prospective order without persisting anything.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	quote, err := h.service.Quote(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownService), errors.Is(err, ErrUnknownComplexity),
			errors.Is(err, ErrForeignAddon), errors.Is(err, ErrInactive):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("quote", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}
