package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-memories/internal/photoprism"
)

// validThumbnailSizes are the PhotoPrism thumbnail sizes the proxy serves.
var validThumbnailSizes = map[string]bool{
	"tile_50": true, "tile_100": true, "left_224": true, "right_224": true,
	"tile_224": true, "tile_500": true, "fit_720": true, "tile_1080": true,
	"fit_1280": true, "fit_1600": true, "fit_1920": true, "fit_2048": true,
	"fit_2560": true, "fit_3840": true, "fit_4096": true, "fit_7680": true,
}

// Thumbnailer fetches preview images of library assets.
type Thumbnailer interface {
	GetPhotoThumbnail(ctx context.Context, photoUID, size string) ([]byte, string, error)
}

// PhotosHandler proxies asset thumbnails so the review UI can show draft photos
type PhotosHandler struct {
	thumbs Thumbnailer
	log    logrus.FieldLogger
}

// NewPhotosHandler creates a new photos handler. thumbs may be nil when the
// library cannot render previews.
func NewPhotosHandler(thumbs Thumbnailer, log logrus.FieldLogger) *PhotosHandler {
	return &PhotosHandler{
		thumbs: thumbs,
		log:    log,
	}
}

// Thumbnail serves a thumbnail of a single asset
func (h *PhotosHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	size := chi.URLParam(r, "size")

	if uid == "" || size == "" {
		respondError(w, http.StatusBadRequest, "missing photo UID or size")
		return
	}
	if !validThumbnailSizes[size] {
		respondError(w, http.StatusBadRequest, "invalid size")
		return
	}
	if h.thumbs == nil {
		respondError(w, http.StatusNotFound, "thumbnails not available")
		return
	}

	data, contentType, err := h.thumbs.GetPhotoThumbnail(r.Context(), uid, size)
	if err != nil {
		if photoprism.IsNotFoundError(err) {
			respondError(w, http.StatusNotFound, "photo not found")
			return
		}
		h.log.WithError(err).WithField("photo", sanitizeForLog(uid)).Warn("Failed to get thumbnail")
		respondError(w, http.StatusBadGateway, "failed to get thumbnail")
		return
	}

	if !strings.HasPrefix(contentType, "image/") {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, bytes.NewReader(data))
}
