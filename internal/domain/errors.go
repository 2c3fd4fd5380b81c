package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrLevelNotFound       = errors.New("level not found")
	ErrPrizeNotFound       = errors.New("prize not found")
	ErrNoActiveProgression = errors.New("player has no unfinished levels")
	ErrMaxLevelReached     = errors.New("player has max level")
	ErrEmptyLevelTable     = errors.New("level table is empty")
	ErrRewardFailed        = errors.New("can't reward player")
	ErrNoExportData        = errors.New("no players to export")
	ErrExportChunkTooSmall = errors.New("export chunk too small")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInternalError       = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrLevelNotFound) ||
		errors.Is(err, ErrPrizeNotFound)
}

// IsPreconditionError reports business-rule failures that become structured
// results instead of HTTP error statuses.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrNoActiveProgression) ||
		errors.Is(err, ErrMaxLevelReached) ||
		errors.Is(err, ErrEmptyLevelTable) ||
		errors.Is(err, ErrRewardFailed)
}

// IsUnavailableError reports conditions surfaced as 503 to the caller.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrNoExportData) || errors.Is(err, ErrExportChunkTooSmall)
}
