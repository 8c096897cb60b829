package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown or already finished.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrActivityNotFound indicates the activity id is not part of the stored dashboard.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrNoQuestions is the non-fatal empty state: no questions could be obtained for an activity.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNotAnswered is returned when advancing past a question that has no recorded answer.
	ErrNotAnswered = errors.New("current question has not been answered")
	// ErrInvalidState is returned when an operation does not apply to the session's current state.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrNoProfile indicates nobody is logged in.
	ErrNoProfile = errors.New("no user profile")
	// ErrInvalidProfile indicates login data failed validation.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrReportInProgress is returned while another report build is running.
	ErrReportInProgress = errors.New("report generation already in progress")
	// ErrKeyNotConfigured is returned when the content API key is not set on the server.
	ErrKeyNotConfigured = errors.New("the API key is not configured on the server")
	// ErrMalformedContent indicates the content provider returned data outside the question schema.
	ErrMalformedContent = errors.New("malformed question content")
)
