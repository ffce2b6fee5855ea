package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/handlers"
	"github.com/Dosada05/selective-league/metrics"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
	"github.com/Dosada05/selective-league/services"
)

const adminPassword = "league-admin"

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	hub    *brackets.Hub
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := repositories.NewMemoryStore(models.RankingPoints)
	hub := brackets.NewHub(logger)
	done := make(chan struct{})
	go hub.Run(done)
	m := metrics.New()

	auth := services.NewAuthService(string(hash), []byte("test-signing-key"), time.Hour)
	ratings := services.NewRatingService(store.Players(), m, logger)
	matchService := services.NewMatchService(store.Matches(), store.Selectives(), ratings, hub, m, logger)
	selectiveService := services.NewSelectiveService(store.Selectives(), store.Matches(), store.Players(), ratings, hub, m, logger)
	rankingService := services.NewRankingService(store.Players(), store.Matches(), store.Settings(), hub, m, logger)
	settingsService := services.NewSettingsService(store.Settings(), hub)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Player:    handlers.NewPlayerHandler(services.NewPlayerService(store.Players(), logger)),
		Selective: handlers.NewSelectiveHandler(selectiveService, matchService),
		Match:     handlers.NewMatchHandler(matchService),
		Ranking:   handlers.NewRankingHandler(rankingService, settingsService),
		Auth:      handlers.NewAuthHandler(auth),
		WebSocket: handlers.NewWebSocketHandler(hub, selectiveService),
	}, Options{AuthService: auth, MetricsHandler: m.Handler(), CORSOrigins: []string{"*"}})

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		close(done)
	})
	return &apiClient{t: t, server: server, hub: hub}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(c.t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *apiClient) login() {
	c.t.Helper()
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	status := c.do(http.MethodPost, "/auth/login", map[string]string{"password": adminPassword}, &out)
	require.Equal(c.t, http.StatusOK, status)
	require.NotEmpty(c.t, out.Token)
	c.token = out.Token
}

func (c *apiClient) createPlayer(name string) *models.Player {
	c.t.Helper()
	var p models.Player
	status := c.do(http.MethodPost, "/players", map[string]string{"name": name}, &p)
	require.Equal(c.t, http.StatusCreated, status)
	return &p
}

func TestPublicEndpoints(t *testing.T) {
	api := newAPI(t)

	resp, err := http.Get(api.server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]interface{}
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/swagger/doc.json", nil, &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	resp, err = http.Get(api.server.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "go_goroutines")

	var settings models.Settings
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/settings", nil, &settings))
	assert.Equal(t, models.RankingPoints, settings.RankingMode)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	api := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/players", map[string]string{"name": "A"}, nil))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/rankings/reset", nil, nil))

	api.token = "not-a-jwt"
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPut, "/settings", map[string]string{"ranking_mode": "elo"}, nil))

	api.token = ""
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/auth/login", map[string]string{"password": "wrong"}, nil))
}

func TestSelectiveLifecycle(t *testing.T) {
	api := newAPI(t)
	api.login()

	a := api.createPlayer("Ana")
	b := api.createPlayer("Bruno")

	var sel models.Selective
	status := api.do(http.MethodPost, "/selectives", map[string]interface{}{
		"name":       "Final",
		"mode":       "elimination",
		"player_ids": []string{a.ID, b.ID},
	}, &sel)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, sel.Matches, 1)
	match := sel.Matches[0]

	// Нельзя отменить незавершенный матч
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/matches/"+match.ID+"/undo", nil, nil))

	var update services.MatchUpdate
	status = api.do(http.MethodPost, "/matches/"+match.ID+"/winner", map[string]string{"winner_id": a.ID}, &update)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, a.ID, update.Match.WinnerID)
	require.NotNil(t, update.Match.EloDelta)
	assert.Equal(t, 16, update.Match.EloDelta.WinnerGain)

	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/matches/"+match.ID+"/winner", map[string]string{"winner_id": b.ID}, nil))

	var view services.RankingView
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/rankings?mode=elo", nil, &view))
	require.Len(t, view.Players, 2)
	assert.Equal(t, models.RankingElo, view.Mode)
	assert.Equal(t, a.ID, view.Players[0].ID)
	assert.Equal(t, 1016, view.Players[0].EloRating)

	var h2h services.HeadToHeadSummary
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/rankings/head-to-head?a="+a.ID+"&b="+b.ID, nil, &h2h))
	assert.Equal(t, 1, h2h.WinsA)
	assert.Equal(t, 1, h2h.Result)

	var standings []models.Standing
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/selectives/"+sel.ID+"/standings", nil, &standings))
	require.Len(t, standings, 2)
	assert.Equal(t, a.ID, standings[0].PlayerID)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/matches/"+match.ID+"/undo", nil, &update))
	assert.Equal(t, models.MatchPending, update.Match.Status)

	var restored models.Player
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/players/"+a.ID, nil, &restored))
	assert.Equal(t, models.DefaultEloRating, restored.EloRating)
	assert.Zero(t, restored.Points)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/selectives/"+sel.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/selectives/"+sel.ID, nil, nil))
}

func TestRequestValidation(t *testing.T) {
	api := newAPI(t)
	api.login()

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/players", `{"name": "A", "extra": 1}`, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/players", `{"name": `, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/rankings?mode=stars", nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/rankings/head-to-head?a=x", nil, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPut, "/settings", map[string]string{"ranking_mode": "stars"}, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/matches/missing/winner", map[string]string{"winner_id": "x"}, nil))

	a := api.createPlayer("Ana")
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/selectives", map[string]interface{}{
		"name":       "Solo",
		"mode":       "swiss",
		"player_ids": []string{a.ID},
	}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/selectives", map[string]interface{}{
		"name":       "Ghost",
		"mode":       "round-robin",
		"player_ids": []string{a.ID, "ghost"},
	}, nil))
}

func TestSelectiveWebSocketReceivesMatchUpdates(t *testing.T) {
	api := newAPI(t)
	api.login()

	a := api.createPlayer("Ana")
	b := api.createPlayer("Bruno")
	var sel models.Selective
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/selectives", map[string]interface{}{
		"name":       "Live",
		"mode":       "elimination",
		"player_ids": []string{a.ID, b.ID},
	}, &sel))

	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws/selectives/missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/selectives/"+sel.ID, nil)
	require.NoError(t, err)
	defer conn.Close()
	room := brackets.RoomForSelective(sel.ID)
	require.Eventually(t, func() bool { return api.hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	match := sel.Matches[0]
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/matches/"+match.ID+"/winner", map[string]string{"winner_id": b.ID}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	// Несколько сообщений могут прийти в одном кадре через перевод строки.
	first := strings.SplitN(string(data), "\n", 2)[0]
	var msg struct {
		Type    string              `json:"type"`
		Payload services.MatchUpdate `json:"payload"`
		RoomID  string              `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &msg))
	assert.Equal(t, brackets.EventMatchUpdated, msg.Type)
	assert.Equal(t, room, msg.RoomID)
	assert.Equal(t, b.ID, msg.Payload.Match.WinnerID)
}
