package handlers

import (
	"io"
	"net/http"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/blobstore"
)

type UploadHandler struct {
	blobs blobstore.Client
}

func NewUploadHandler(blobs blobstore.Client) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

// Upload accepts a single document under the "file" form field, checks type
// and size, and hands it to the blob store. The returned URL goes into the
// application form as cv_url or cover_letter_url.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		response.Error(w, common.NewError(common.CodeInternal, "uploads not configured", nil))
		return
	}
	if err := r.ParseMultipartForm(blobstore.MaxUploadBytes); err != nil {
		response.Error(w, common.NewError(common.CodeUploadRejected, "invalid multipart payload", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "file is required", err))
		return
	}
	defer file.Close()

	if err := blobstore.Validate(header.Filename, header.Size); err != nil {
		response.Error(w, err)
		return
	}
	content, err := io.ReadAll(io.LimitReader(file, blobstore.MaxUploadBytes+1))
	if err != nil {
		response.Error(w, common.NewError(common.CodeInternal, "failed to read upload", err))
		return
	}
	if int64(len(content)) > blobstore.MaxUploadBytes {
		response.Error(w, common.NewError(common.CodeUploadRejected, "file exceeds the 5MB limit", nil))
		return
	}
	url, err := h.blobs.Upload(r.Context(), header.Filename, content)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
