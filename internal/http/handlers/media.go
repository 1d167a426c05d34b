package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/service"
)

// multipartOverhead — запас на границы и заголовки multipart поверх файла.
const multipartOverhead = 1 << 20

type mediaResponse struct {
	Result  bool  `json:"result"`
	MediaID int64 `json:"media_id"`
}

// UploadMedia — POST /media, multipart-поле file.
// Тип определяется по содержимому, заголовок клиента не учитывается.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	me, err := subject(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxJSONBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.WriteError(w, r, &service.ValidationError{Field: "file", Message: "file is too large"})
			return
		}
		apierrors.WriteError(w, r, fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.WriteError(w, r, &service.ValidationError{Field: "file", Message: "file is required"})
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err))
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	body := io.MultiReader(bytes.NewReader(head), file)

	id, err := h.svc.UploadMedia(r.Context(), me, body, header.Size, contentType)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mediaResponse{Result: true, MediaID: id})
}
