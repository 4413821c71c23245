package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUpdateFinalized = errors.New("data update already finalized")
	ErrFeedUnavailable = errors.New("feed unavailable")
	ErrNoInsightClient = errors.New("no insight provider configured")
)
