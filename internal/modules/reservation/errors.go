package reservation

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("reservation not found")
	ErrForbidden        = errors.New("reservation belongs to another user")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrStayStarted      = errors.New("reservation can no longer be cancelled")
)
