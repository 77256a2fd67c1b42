package util

import "errors"

var (
	// ErrSelectionEmpty: no questions match the chosen course/version/difficulty.
	// Recoverable, user re-prompts with different criteria; no session is created.
	ErrSelectionEmpty = errors.New("no questions match the selected criteria")

	// ErrAlreadyAnswered: double submit against the current question. Upstream
	// disabled-input discipline should make this impossible, treat as bug signal.
	ErrAlreadyAnswered = errors.New("current question already answered")

	// ErrUnscorableQuestion: the current item violates the options/correctIndex
	// contract and is skipped without counting right or wrong.
	ErrUnscorableQuestion = errors.New("current question is unscorable")

	ErrAnswerRequired    = errors.New("current question has no answer yet")
	ErrSessionNotFound   = errors.New("quiz session not found")
	ErrSessionCompleted  = errors.New("quiz session already completed")
	ErrSessionInProgress = errors.New("quiz session not completed yet")
	ErrCourseNotFound    = errors.New("course not found")
	ErrCatalogNotReady   = errors.New("catalog snapshot not available yet")
	ErrOptionIndexRange  = errors.New("optionIndex out of range")
	ErrInvalidFilter     = errors.New("invalid version or difficulty filter")
	ErrImportNotArray    = errors.New("import payload must be a JSON array")
	ErrImportInvalid     = errors.New("import payload contains invalid records")
	ErrInvalidAccessCode = errors.New("invalid access code")
)
