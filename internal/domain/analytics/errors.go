// internal/domain/analytics/errors.go

package analytics

import (
	"errors"
	"fmt"
)

// Code distinguishes the structured failure modes a pipeline run can
// surface to its caller. Store and secondary-source failures are not
// represented here: they degrade the result with a warning instead of
// failing the operation.
type Code string

const (
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeInvalidURL       Code = "INVALID_URL_FORMAT"
	CodeInvalidUsername  Code = "INVALID_USERNAME"
	CodeInvalidSubreddit Code = "INVALID_SUBREDDIT_NAME"
	CodeNotFound         Code = "NOT_FOUND"
	CodeUpstream         Code = "API_ERROR"
)

// Error is a coded pipeline error. The zero Code is never used; every
// error surfaced past the analyzer boundary carries one of the codes
// above.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a coded error wrapping an optional cause.
func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error, or empty when the error is not
// a pipeline error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Warning texts attached to degraded-but-successful results.
const (
	WarnStoreFailed      = "database save failed"
	WarnSubredditMissing = "subscriber count unavailable, engagement score defaulted to 0"
	WarnCommentsMissing  = "comment search unavailable, comment sentiment defaulted to neutral"
	WarnOEmbedMissing    = "oembed metadata unavailable"
	WarnOverviewMissing  = "recent activity unavailable"
	WarnTopPostsMissing  = "weekly activity unavailable"
	WarnInsightFailed    = "insight generation failed"
)
