package services

import "errors"

var (
	// ErrPending is returned when the same action on the same target is
	// still running for this session.
	ErrPending = errors.New("action already in progress")

	ErrNoSession = errors.New("no active session")

	// ErrBadToken means the login token could not be decoded, carried no
	// usable role, or was already expired.
	ErrBadToken = errors.New("login token rejected")
)
