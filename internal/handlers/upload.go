package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jugnunagar/folio/internal/storage"
	"go.uber.org/zap"
)

const maxUpload = 10 << 20

var coverExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

type UploadHandler struct {
	storage storage.Storage
	logger  *zap.Logger
	newID   func() string
}

// NewUploadHandler accepts a nil storage; uploads then fail with 500.
func NewUploadHandler(st storage.Storage, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{storage: st, logger: logger, newID: uuid.NewString}
}

type uploadResponse struct {
	OK  bool   `json:"ok"`
	URL string `json:"url"`
}

func (h *UploadHandler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.storage == nil {
			writeError(w, http.StatusInternalServerError, "Upload failed", "object storage is not configured")
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", "")
				return
			}
			writeError(w, http.StatusBadRequest, "Upload failed", err.Error())
			return
		}
		if len(data) == 0 {
			writeError(w, http.StatusBadRequest, "Empty upload", "")
			return
		}

		contentType := sniff(r.Header.Get("Content-Type"), data)
		key := "covers/" + h.newID() + extFor(contentType)
		if err := h.storage.Upload(r.Context(), key, bytes.NewReader(data), contentType); err != nil {
			h.logger.Error("cover upload failed", zap.String("key", key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Upload failed", err.Error())
			return
		}
		h.logger.Info("cover uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
		writeJSON(w, http.StatusOK, uploadResponse{OK: true, URL: h.storage.URL(key)})
	}
}

// sniff trusts a declared image type and otherwise inspects the bytes.
func sniff(declared string, data []byte) string {
	declared = strings.TrimSpace(strings.SplitN(declared, ";", 2)[0])
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return strings.SplitN(http.DetectContentType(data), ";", 2)[0]
}

func extFor(contentType string) string {
	if ext, ok := coverExt[contentType]; ok {
		return ext
	}
	return ".jpg"
}
