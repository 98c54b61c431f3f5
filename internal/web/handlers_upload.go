package web

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/indicators/internal/core"
)

// uploadResponse is the reply to a finished import.
type uploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	core.ImportResult
}

// handleUpload imports an xlsx workbook sent as the multipart field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, fmt.Errorf("parse upload form: %w", err), statusForForm(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		err := fmt.Errorf("upload %q: only .xlsx files are allowed: %w", header.Filename, core.ErrNotSpreadsheet)
		s.respondError(w, r, err, http.StatusUnsupportedMediaType)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Import(ctx, file, header.Filename)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:      true,
		Message:      fmt.Sprintf("File uploaded: %d valid, %d with errors", res.Valid, res.Quarantined),
		ImportResult: *res,
	})
}

// statusForForm maps multipart parsing failures; anything but an oversized
// body is a malformed request.
func statusForForm(err error) int {
	if code := statusFor(err); code == http.StatusRequestEntityTooLarge {
		return code
	}
	return http.StatusBadRequest
}
