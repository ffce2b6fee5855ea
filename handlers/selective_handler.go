package handlers

import (
	"net/http"

	"github.com/Dosada05/selective-league/services"
)

type SelectiveHandler struct {
	selectiveService services.SelectiveService
	matchService     services.MatchService
}

func NewSelectiveHandler(selectiveService services.SelectiveService, matchService services.MatchService) *SelectiveHandler {
	return &SelectiveHandler{selectiveService: selectiveService, matchService: matchService}
}

func (h *SelectiveHandler) List(w http.ResponseWriter, r *http.Request) {
	selectives, err := h.selectiveService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, selectives)
}

func (h *SelectiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "selectiveID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sel, err := h.selectiveService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, sel)
}

func (h *SelectiveHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "selectiveID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matches, err := h.matchService.ListBySelective(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

func (h *SelectiveHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "selectiveID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	standings, err := h.selectiveService.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, standings)
}

func (h *SelectiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSelectiveInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sel, err := h.selectiveService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, sel)
}

func (h *SelectiveHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "selectiveID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sel, err := h.selectiveService.Complete(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, sel)
}

func (h *SelectiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "selectiveID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err = h.selectiveService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
