package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapper.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Events
	ErrEventNotFound                = errors.New("event not found")
	ErrEventNameRequired            = errors.New("event name is required")
	ErrEventNameConflict            = errors.New("event name already exists")
	ErrEventInvalidDateRange        = errors.New("event end date must be after start date")
	ErrEventInvalidStatus           = errors.New("invalid event status provided")
	ErrEventInvalidStatusTransition = errors.New("invalid event status transition")
	ErrEventNotSeasonPlay           = errors.New("event does not run a regular season")

	// Competitors / seeding
	ErrCompetitorNotFound     = errors.New("competitor not found")
	ErrCompetitorNameRequired = errors.New("competitor name is required")
	ErrDuplicateSeed          = errors.New("duplicate seed rank in this event")
	ErrNotEnoughCompetitors   = errors.New("not enough competitors to generate a bracket (minimum 2)")

	// Matches / progression
	ErrMatchNotFound          = errors.New("match not found")
	ErrInvalidWinner          = errors.New("winner must be one of the match's competitors")
	ErrDrawNotAllowed         = errors.New("a draw is only valid for regular-season matches")
	ErrMatchAlreadySettled    = errors.New("match result is already settled")
	ErrInvalidStatusChange    = errors.New("invalid match status transition")
	ErrAdvancementConflict    = errors.New("next-round slot already holds a different competitor")
	ErrAnnouncementNotFound   = errors.New("announcement not found")
	ErrAnnouncementBodyNeeded = errors.New("announcement title and content are required")
)
