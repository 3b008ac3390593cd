package models

import "errors"

var (
	ErrInvalidJSON       = errors.New("invalid json")
	ErrEmptyPlayerName   = errors.New("player name required")
	ErrNotPlaying        = errors.New("game not in progress")
	ErrGameCompleted     = errors.New("game already completed")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrCardNotDealt      = errors.New("card not dealt")
	ErrCardAlreadyPlaced = errors.New("card already placed")
	ErrStaleSession      = errors.New("session no longer active")
	ErrSessionNotFound   = errors.New("session not found")
)
