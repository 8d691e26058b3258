package domain

import "errors"

var (
	// ErrPaperNotFound signals a missing paper.
	ErrPaperNotFound = errors.New("paper not found")
	// ErrProviderNotConfigured signals that a model provider is required but absent.
	ErrProviderNotConfigured = errors.New("model provider not configured")
	// ErrProviderError signals a model provider failure.
	ErrProviderError = errors.New("model provider error")
	// ErrInvalidDimension signals an unknown stats dimension.
	ErrInvalidDimension = errors.New("invalid stats dimension")
)
