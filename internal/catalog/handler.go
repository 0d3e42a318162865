package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
	"github.com/kitforge-id/kitforge/internal/shared"
)

// Handler serves the catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *CatalogService
	audit   *shared.AuditLogger
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, service *CatalogService, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, audit: audit}
}

// MountRoutes attaches catalog routes. Reads require a session; writes
// require the admin role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/snapshot", h.ShowSnapshot)
		r.Get("/services", h.ListServices)
		r.Get("/services/{id}", h.ShowService)
		r.Get("/services/{id}/addons", h.ListAddons)
		r.Get("/complexities", h.ListComplexities)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/services", h.CreateService)
		r.Put("/services/{id}", h.UpdateService)
		r.Delete("/services/{id}", h.DeleteService)
		r.Post("/complexities", h.CreateComplexity)
		r.Put("/complexities/{id}", h.UpdateComplexity)
		r.Delete("/complexities/{id}", h.DeleteComplexity)
		r.Put("/services/{id}/complexities/{complexityID}", h.UpsertOverride)
		r.Delete("/services/{id}/complexities/{complexityID}", h.DeleteOverride)
		r.Post("/services/{id}/addons", h.CreateAddon)
		r.Put("/addons/{id}", h.UpdateAddon)
		r.Delete("/addons/{id}", h.DeleteAddon)
	})
}

func (h *Handler) ShowSnapshot(w http.ResponseWriter, r *http.Request) {
	includeInactive := auth.CurrentRole(r) == auth.RoleAdmin && r.URL.Query().Get("all") == "true"
	snap, err := h.service.Snapshot(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("catalog snapshot", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	includeInactive := auth.CurrentRole(r) == auth.RoleAdmin && r.URL.Query().Get("all") == "true"
	services, err := h.service.ListServices(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("list services", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services)
}

func (h *Handler) ShowService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	svc, err := h.service.GetService(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	svc, err := h.service.CreateService(r.Context(), req)
	if err != nil {
		h.logger.Error("create service", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.service.create", "service_type", svc.ID)
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	var req UpdateServiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	svc, err := h.service.UpdateService(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.service.update", "service_type", id)
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	if err := h.service.DeleteService(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.service.delete", "service_type", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListComplexities(w http.ResponseWriter, r *http.Request) {
	includeInactive := auth.CurrentRole(r) == auth.RoleAdmin && r.URL.Query().Get("all") == "true"
	levels, err := h.service.ListComplexities(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("list complexities", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) CreateComplexity(w http.ResponseWriter, r *http.Request) {
	var req CreateComplexityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	level, err := h.service.CreateComplexity(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.complexity.create", "complexity_level", level.ID)
	httpx.JSON(w, http.StatusCreated, level)
}

func (h *Handler) UpdateComplexity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid complexity id")
		return
	}
	var req UpdateComplexityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	level, err := h.service.UpdateComplexity(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.complexity.update", "complexity_level", id)
	httpx.JSON(w, http.StatusOK, level)
}

func (h *Handler) DeleteComplexity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid complexity id")
		return
	}
	if err := h.service.DeleteComplexity(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.complexity.delete", "complexity_level", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	complexityID, err := pathID(r, "complexityID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid complexity id")
		return
	}
	var req UpsertOverrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	if err := h.service.UpsertOverride(r.Context(), serviceID, complexityID, req.Multiplier); err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.override.upsert", "service_complexity", serviceID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	complexityID, err := pathID(r, "complexityID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid complexity id")
		return
	}
	if err := h.service.DeleteOverride(r.Context(), serviceID, complexityID); err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.override.delete", "service_complexity", serviceID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAddons(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	addons, err := h.service.ListAddonsByService(r.Context(), serviceID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, addons)
}

func (h *Handler) CreateAddon(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid service id")
		return
	}
	var req CreateAddonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	addon, err := h.service.CreateAddon(r.Context(), serviceID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.addon.create", "service_addon", addon.ID)
	httpx.JSON(w, http.StatusCreated, addon)
}

func (h *Handler) UpdateAddon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid addon id")
		return
	}
	var req UpdateAddonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := shared.ValidateStruct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	addon, err := h.service.UpdateAddon(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.addon.update", "service_addon", id)
	httpx.JSON(w, http.StatusOK, addon)
}

func (h *Handler) DeleteAddon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid addon id")
		return
	}
	if err := h.service.DeleteAddon(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.recordAudit(r, "catalog.addon.delete", "service_addon", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) recordAudit(r *http.Request, action, entity string, id int64) {
	actorID, _ := auth.CurrentUserID(r)
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil {
		h.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
