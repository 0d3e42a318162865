package forms

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Handler serves form template CRUD. Reads need a session, writes need admin.
type Handler struct {
	logger *slog.Logger
	repo   Repository
	audit  *shared.AuditLogger
}

// NewHandler constructs a forms handler.
func NewHandler(logger *slog.Logger, repo Repository, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, repo: repo, audit: audit}
}

// MountRoutes attaches form template routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := auth.CurrentRole(r) == auth.RoleAdmin && r.URL.Query().Get("all") == "true"
	list, err := h.repo.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("list forms", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	if list == nil {
		list = []Template{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid template id")
		return
	}
	t, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	t, err := h.repo.Create(r.Context(), templateFrom(req))
	if err != nil {
		h.logger.Error("create form", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "forms.create", t.ID)
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid template id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.repo.Update(r.Context(), id, templateFrom(req)); err != nil {
		h.respondError(w, err)
		return
	}
	t, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "forms.update", id)
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid template id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "forms.delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (UpsertTemplateRequest, bool) {
	var req UpsertTemplateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return req, false
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return req, false
	}
	if !json.Valid(req.Schema) {
		httpx.ValidationProblem(w, map[string]string{"schema": "must be valid JSON"})
		return req, false
	}
	return req, true
}

func templateFrom(req UpsertTemplateRequest) Template {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Template{
		Name:     strings.TrimSpace(req.Name),
		Schema:   req.Schema,
		IsActive: active,
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64) {
	actorID, _ := auth.CurrentUserID(r)
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "form_template",
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
