package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
)

// ProfileHandler handles patient insurance profile requests. These are
// the self-service endpoints: a declaration made here is an unverified
// claim, and the verified flag is not writable through this surface.
type ProfileHandler struct {
	profileRepo repositories.InsuranceProfileRepository
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileRepo repositories.InsuranceProfileRepository) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
	}
}

// GetProfile handles GET /api/patients/{id}/insurance-profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	profile, err := h.profileRepo.GetByPatientID(r.Context(), patientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

type declareProfileRequest struct {
	DeclaredTier  string `json:"declared_tier"`
	FonasaBracket string `json:"fonasa_bracket,omitempty"`
	IsapreName    string `json:"isapre_name,omitempty"`
}

// DeclareProfile handles PUT /api/patients/{id}/insurance-profile
func (h *ProfileHandler) DeclareProfile(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var req declareProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	tier, err := entities.ParseTier(req.DeclaredTier)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := &entities.PatientInsuranceProfile{
		PatientID:    patientID,
		DeclaredTier: tier,
	}

	switch tier {
	case entities.TierFonasa:
		bracket, err := entities.ParseFonasaBracket(req.FonasaBracket)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		profile.FonasaBracket = &bracket
	case entities.TierIsapre:
		name := strings.TrimSpace(req.IsapreName)
		if name == "" {
			respondWithError(w, http.StatusBadRequest, "isapre name is required")
			return
		}
		profile.IsapreName = &name
	}

	if err := h.profileRepo.Upsert(r.Context(), profile); err != nil {
		respondWithAppError(w, err)
		return
	}

	// Re-read so the response reflects the durable verified state, which
	// a self-service declaration never changes.
	saved, err := h.profileRepo.GetByPatientID(r.Context(), patientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, saved)
}
