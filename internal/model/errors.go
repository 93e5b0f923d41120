package model

import "errors"

var (
	// Session related errors
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrNotAuthenticated = errors.New("not authenticated")

	// File related errors
	ErrFileNotFound = errors.New("file not found")
	ErrFileDeleted  = errors.New("file is deleted")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Upload related errors
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
