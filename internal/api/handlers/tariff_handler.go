package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

// TariffHandler handles tariff-related HTTP requests
type TariffHandler struct {
	tariffRepo repositories.TariffRepository
}

// NewTariffHandler creates a new tariff handler
func NewTariffHandler(tariffRepo repositories.TariffRepository) *TariffHandler {
	return &TariffHandler{
		tariffRepo: tariffRepo,
	}
}

// ListTariffs handles GET /api/tariffs
func (h *TariffHandler) ListTariffs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)
	offset := parseIntParam(r, "offset", 0)

	tariffs, err := h.tariffRepo.List(r.Context(), repositories.TariffFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"tariffs": tariffs,
	})
}

// GetTariff handles GET /api/tariffs/{specialty}
func (h *TariffHandler) GetTariff(w http.ResponseWriter, r *http.Request) {
	specialty := r.PathValue("specialty")
	if specialty == "" {
		respondWithError(w, http.StatusBadRequest, "specialty is required")
		return
	}

	tariff, err := h.tariffRepo.GetBySpecialty(r.Context(), specialty)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tariff)
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// respondWithAppError maps an application error onto an HTTP status
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}
