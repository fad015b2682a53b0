package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/services"
)

var errInvalidRoundQuery = errors.New("invalid round query parameter")

type OutcomeHandler struct {
	outcomeService services.OutcomeService
}

func NewOutcomeHandler(outcomeService services.OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{outcomeService: outcomeService}
}

func (h *OutcomeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitOutcomeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID

	outcome, err := h.outcomeService.SubmitOutcome(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"outcome": outcome}, nil)
}

func (h *OutcomeHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	outcomeID, err := urlParamInt(r, "outcomeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.outcomeService.ConfirmOutcome(r.Context(), tournamentID, outcomeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil)
}

func (h *OutcomeHandler) Amend(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	outcomeID, err := urlParamInt(r, "outcomeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Result models.GameResult `json:"result"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.outcomeService.AmendOutcome(r.Context(), tournamentID, outcomeID, input.Result)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil)
}

func (h *OutcomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	outcomeID, err := urlParamInt(r, "outcomeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.outcomeService.DeleteOutcome(r.Context(), tournamentID, outcomeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"message": "outcome deleted"}, nil)
}

func (h *OutcomeHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var roundFilter *int
	if raw := r.URL.Query().Get("round"); raw != "" {
		round, convErr := strconv.Atoi(raw)
		if convErr != nil || round < 1 {
			badRequestResponse(w, r, errInvalidRoundQuery)
			return
		}
		roundFilter = &round
	}

	outcomes, err := h.outcomeService.ListByTournament(r.Context(), tournamentID, roundFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"outcomes": outcomes}, nil)
}
