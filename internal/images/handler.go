package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/store"
)

const (
	formField = "image"
	keyPrefix = "products/"
	// maxUploadBytes caps a single product image.
	maxUploadBytes = 5 << 20
)

// FileStore defines the interface for object storage.
type FileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Handler holds product-image HTTP handlers.
type Handler struct {
	files FileStore
	log   *slog.Logger
}

func NewHandler(files FileStore, log *slog.Logger) *Handler {
	return &Handler{files: files, log: log}
}

// Upload stores the multipart "image" field under a fresh key and returns the
// URL it can be fetched from.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile(formField)
	if err != nil {
		httpx.RespondError(w, r, h.log, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := keyPrefix + uuid.NewString() + strings.ToLower(path.Ext(header.Filename))

	if err := h.files.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, models.ImageUpload{Key: key, URL: "/images/" + key})
}

// Download streams a stored image.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !strings.HasPrefix(key, keyPrefix) || strings.Contains(key, "..") {
		httpx.JSON(w, http.StatusNotFound, httpx.Message{Message: "image not found"})
		return
	}

	obj, contentType, err := h.files.Open(r.Context(), key)
	if errors.Is(err, store.ErrObjectNotFound) {
		httpx.JSON(w, http.StatusNotFound, httpx.Message{Message: "image not found"})
		return
	}
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, obj); err != nil {
		h.log.WarnContext(r.Context(), "image stream interrupted", slog.String("key", key), slog.Any("error", err))
	}
}
