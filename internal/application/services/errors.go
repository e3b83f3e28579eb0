package services

import "errors"

var (
	// Caller errors, rejected before any stream processing begins.
	ErrMissingFileName = errors.New("file name is required")

	// Expected terminal outcomes of the ingestion state machine.
	ErrFileTooLarge = errors.New("file exceeds the size limit")
	ErrFileInfected = errors.New("file is infected")

	ErrFileNotFound = errors.New("file not found")

	// ErrNameResolutionExhausted fires when the collision probe loop hits its
	// bound instead of looping forever.
	ErrNameResolutionExhausted = errors.New("could not resolve a free file name")
)
