package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/indicators/internal/core"
)

// handleTransfer promotes quarantined records. The body is a JSON array of ids.
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `validate:"required,min=1,dive,gt=0"`
	}
	if err := decodeJSON(w, r, &req.IDs); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.validateStruct(req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	promoted, err := s.service.Promote(ctx, req.IDs)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("%d records transferred", len(promoted)),
		"indicators": promoted,
	})
}

// handleUpdate applies a partial update to a valid record.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	var patch core.IndicatorPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.validateStruct(patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	ind, err := s.service.UpdateIndicator(ctx, id, patch)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Indicator updated successfully",
		"indicator": ind,
	})
}

// handleUpdateError applies a partial update to a quarantined record.
func (s *Server) handleUpdateError(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	var patch core.IndicatorPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.validateStruct(patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	q, err := s.service.UpdateQuarantined(ctx, id, patch)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Error updated successfully",
		"error":   q,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.ClearIndicators(WithRequestMetadata(r.Context(), r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Indicators cleared",
		"deleted": n,
	})
}

func (s *Server) handleClearErrors(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.ClearQuarantined(WithRequestMetadata(r.Context(), r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Errors cleared",
		"deleted": n,
	})
}
