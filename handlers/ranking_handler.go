package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/services"
)

type RankingHandler struct {
	rankingService  services.RankingService
	settingsService services.SettingsService
}

func NewRankingHandler(rankingService services.RankingService, settingsService services.SettingsService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService, settingsService: settingsService}
}

// GetRankings отдает общий рейтинг. Без ?mode используется режим из настроек.
func (h *RankingHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	var mode *models.RankingMode
	if raw := strings.TrimSpace(r.URL.Query().Get("mode")); raw != "" {
		m := models.RankingMode(raw)
		if !m.Valid() {
			badRequestResponse(w, r, errors.New("mode must be 'points' or 'elo'"))
			return
		}
		mode = &m
	}

	view, err := h.rankingService.GetRankings(r.Context(), mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, view)
}

func (h *RankingHandler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	a := strings.TrimSpace(r.URL.Query().Get("a"))
	b := strings.TrimSpace(r.URL.Query().Get("b"))
	if a == "" || b == "" {
		badRequestResponse(w, r, errors.New("query parameters 'a' and 'b' are required"))
		return
	}
	summary, err := h.rankingService.GetHeadToHead(r.Context(), a, b)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, summary)
}

func (h *RankingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rankingService.GlobalStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

func (h *RankingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.rankingService.ResetCurrentRanking(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RankingHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, settings)
}

func (h *RankingHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input models.Settings
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	settings, err := h.settingsService.SetRankingMode(r.Context(), input.RankingMode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, settings)
}
