package services

import "errors"

// Task errors
var (
	ErrTaskNotFound     = errors.New("task: not found")
	ErrTaskInvalidInput = errors.New("task: invalid input")
	ErrTaskEmptyURL     = errors.New("task: url is required")
)

// Store errors
var (
	ErrStoreUnavailable = errors.New("store: unavailable")
)
