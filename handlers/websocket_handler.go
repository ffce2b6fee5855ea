package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin ограничивается CORS на уровне роутера.
		return true
	},
}

type WebSocketHandler struct {
	hub              *brackets.Hub
	selectiveService services.SelectiveService
}

func NewWebSocketHandler(hub *brackets.Hub, selectiveService services.SelectiveService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, selectiveService: selectiveService}
}

// ServeSelective подписывает клиента на события селективки.
// Клиент подключается к /ws/selectives/{selectiveID}
func (h *WebSocketHandler) ServeSelective(w http.ResponseWriter, r *http.Request) {
	selectiveID, err := urlParam(r, "selectiveID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err = h.selectiveService.GetByID(r.Context(), selectiveID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, brackets.RoomForSelective(selectiveID))
}

// ServeRanking подписывает клиента на изменения общего рейтинга.
func (h *WebSocketHandler) ServeRanking(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, brackets.RankingRoom)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту
		logger(r).Warn("websocket upgrade failed", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	if !h.hub.Subscribe(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	logger(r).Debug("websocket client connected", slog.String("room", roomID))
}
