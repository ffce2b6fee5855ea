package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrPlayerNotFound    = errors.New("player not found")
	ErrSelectiveNotFound = errors.New("selective not found")
	ErrMatchNotFound     = errors.New("match not found")

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidWinner    = errors.New("winner must be one of the match participants")
	ErrInvalidMode      = errors.New("unknown ranking mode")

	// Нарушения порядка действий
	ErrMatchNotPlayable     = errors.New("match is waiting for an opponent")
	ErrMatchAlreadyDecided  = errors.New("match already has a result")
	ErrMatchNotDecided      = errors.New("match has no result to undo")
	ErrByeMatchUndo         = errors.New("bye matches cannot be undone")
	ErrDownstreamDecided    = errors.New("next bracket match has already been played; undo it first")
	ErrSelectiveCompleted   = errors.New("selective is already completed")
	ErrSelectiveNotFinished = errors.New("selective still has undecided matches")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials   = errors.New("invalid password")
	ErrAuthenticationFailed = errors.New("authentication failed")
)
