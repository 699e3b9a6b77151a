package domain

import "errors"

var (
	// ErrGameNotFound indicates the game spec could not be loaded.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameNotStarted is returned when a learner acts on a game they have not opened.
	ErrGameNotStarted = errors.New("game not started")
	// ErrUnknownGameType is returned when a payload carries an unrecognized type tag.
	ErrUnknownGameType = errors.New("unknown game type")
	// ErrUnsupportedActivity indicates an activity set nests a non-atomic game.
	ErrUnsupportedActivity = errors.New("activity must be an atomic game")
	// ErrInvalidSpec indicates a spec document failed schema validation.
	ErrInvalidSpec = errors.New("invalid game spec")
	// ErrProgressNotFound is returned by progress repositories when nothing is persisted yet.
	ErrProgressNotFound = errors.New("progress not found")
)
