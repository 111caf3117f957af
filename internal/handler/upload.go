package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/userfolio/accounts-api/internal/logging"
	"github.com/userfolio/accounts-api/internal/upload"
)

type imageUploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*upload.Asset, error)
}

type UploadHandler struct {
	uploader imageUploader
	folder   string
	maxBytes int64
}

func NewUploadHandler(uploader imageUploader, folder string, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploader: uploader, folder: folder, maxBytes: maxBytes}
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Upload accepts a multipart form with a single "file" field and hands the
// bytes to the image host. Format and dimension policy is the uploader's
// concern; the handler only checks that a file arrived at all.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		RespondAppError(w, ErrNoFileUploaded)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondAppErrorDetail(w, ErrUploadFailed, err.Error())
		return
	}

	asset, err := h.uploader.Upload(r.Context(), data, h.folder)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedFormat) {
			RespondAppErrorDetail(w, ErrInvalidImage, err.Error())
			return
		}
		logging.FromContext(r.Context()).Error("image upload failed", "error", err)
		RespondAppErrorDetail(w, ErrUploadFailed, err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		URL:      asset.URL,
		PublicID: asset.PublicID,
	})
}
