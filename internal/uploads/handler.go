package uploads

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/platform/httpx"
)

// Handler accepts multipart uploads.
type Handler struct {
	logger   *slog.Logger
	storage  *Storage
	maxBytes int64
}

// NewHandler constructs an uploads handler.
func NewHandler(logger *slog.Logger, storage *Storage, maxBytes int64) *Handler {
	return &Handler{logger: logger, storage: storage, maxBytes: maxBytes}
}

// MountRoutes attaches the upload route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Post("/", h.Create)
	})
}

// Create stores the "file" part of a multipart form and returns its public
// URL.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	// Request body cap leaves headroom for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	stored, err := h.storage.Save(file, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			httpx.Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
		case errors.Is(err, ErrUnsupportedType):
			httpx.Problem(w, http.StatusUnsupportedMediaType, "Unsupported Media Type", err.Error())
		default:
			h.logger.Error("upload", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}

	h.logger.Info("upload stored", slog.String("name", stored.Name), slog.Int64("size_bytes", stored.SizeBytes))
	httpx.JSON(w, http.StatusCreated, stored)
}
