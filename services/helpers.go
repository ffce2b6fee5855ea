package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
)

// Notifier рассылает события подписчикам комнаты. Реализуется brackets.Hub.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

type noopNotifier struct{}

func (noopNotifier) BroadcastToRoom(string, interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func broadcast(n Notifier, room, eventType string, payload interface{}) {
	n.BroadcastToRoom(room, brackets.WebSocketMessage{Type: eventType, Payload: payload, RoomID: room})
}

// handleRepositoryError translates repository sentinels into service errors.
func handleRepositoryError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return fmt.Errorf("%s: %w", op, ErrPlayerNotFound)
	case errors.Is(err, repositories.ErrSelectiveNotFound), errors.Is(err, repositories.ErrMatchSelectiveInvalid):
		return fmt.Errorf("%s: %w", op, ErrSelectiveNotFound)
	case errors.Is(err, repositories.ErrMatchNotFound):
		return fmt.Errorf("%s: %w", op, ErrMatchNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func loadPlayerMap(ctx context.Context, repo repositories.PlayerRepository) (map[string]*models.Player, error) {
	players, err := repo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	byID := make(map[string]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}

// replaceMatch swaps the stored copy of m inside matches for m itself, so that
// in-place bracket updates see the caller's version.
func replaceMatch(matches []*models.Match, m *models.Match) []*models.Match {
	for i, candidate := range matches {
		if candidate.ID == m.ID {
			matches[i] = m
			return matches
		}
	}
	return append(matches, m)
}
