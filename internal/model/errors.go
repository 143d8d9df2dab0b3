package model

import "errors"

// Common errors used across the application
var (
	// ErrDuplicateName is returned on registration or rename when the
	// username is already taken anywhere in the world
	ErrDuplicateName = errors.New("username already taken")

	// ErrInvalidCredentials is returned on login/auth failure
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPlayerNotFound is returned when a command targets a nonexistent player
	ErrPlayerNotFound = errors.New("player not found")

	// ErrNotLoggedIn is returned when an authenticated command comes from a
	// nick not bound to an online player
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrUnauthorized is returned when a non-admin invokes an admin command
	ErrUnauthorized = errors.New("access denied")

	// ErrAlreadyOnline is returned on login for an already-online player
	ErrAlreadyOnline = errors.New("already logged in")

	// ErrValidation is returned for malformed names, classes or numeric args
	ErrValidation = errors.New("validation failed")

	// ErrInvalidSlot is returned for item writes naming a slot outside
	// the fixed set
	ErrInvalidSlot = errors.New("invalid item slot")
)
