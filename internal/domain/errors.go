package domain

import "errors"

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrUserNotFound   = errors.New("user not found")

	ErrSoldOut    = errors.New("no tickets available")
	ErrEventEnded = errors.New("event has already taken place")

	ErrForbidden     = errors.New("not allowed")
	ErrInvalidStatus = errors.New("status transition not permitted")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
