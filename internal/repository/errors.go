package repository

import "errors"

var (
	// ErrRecordNotFound indicates the transform record was not found
	ErrRecordNotFound = errors.New("transform record not found")

	// ErrInvalidRecord indicates a record is missing required fields
	ErrInvalidRecord = errors.New("invalid transform record")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
