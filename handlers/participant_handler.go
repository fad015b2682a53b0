package handlers

import (
	"context"
	"net/http"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(participantService services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService}
}

func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Register(r.Context(), tournamentID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil)
}

func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var statusFilter *models.ParticipantStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ParticipantStatus(raw)
		statusFilter = &status
	}

	participants, err := h.participantService.ListByTournament(r.Context(), tournamentID, statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil)
}

func (h *ParticipantHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.participantService.Withdraw, models.ParticipantWithdrawn)
}

func (h *ParticipantHandler) Disqualify(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.participantService.Disqualify, models.ParticipantDisqualified)
}

func (h *ParticipantHandler) setStatus(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, tournamentID, participantID int) error,
	status models.ParticipantStatus,
) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := urlParamInt(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := apply(r.Context(), tournamentID, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"participant_id": participantID, "status": status}, nil)
}
