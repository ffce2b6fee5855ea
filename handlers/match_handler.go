package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/selective-league/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type setWinnerRequest struct {
	WinnerID string `json:"winner_id"`
}

func (h *MatchHandler) SetWinner(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input setWinnerRequest
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.WinnerID) == "" {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}

	update, err := h.matchService.SetWinner(r.Context(), id, input.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, update)
}

func (h *MatchHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	update, err := h.matchService.UndoResult(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, update)
}
