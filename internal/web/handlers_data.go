package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/indicators/internal/core"
)

const (
	exportFileName = "indicators.xlsx"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleData returns both collections and the edit catalogues.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDivisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"divisions": s.service.Divisions()})
}

// handleExport streams one collection as an xlsx attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseExportKind(chi.URLParam(r, "type"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data, err := s.service.Export(r.Context(), kind)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
