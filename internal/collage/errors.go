package collage

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Every failure of Generate, other
// than context cancellation, carries exactly one Kind.
type Kind int

const (
	KindUnknownOption     Kind = iota + 1 // Label outside its table
	KindInvalidUser                       // Username does not exist
	KindRequestFailed                     // Non-200, non-404 response
	KindNetworkError                      // Transport failure
	KindResponseMalformed                 // Body failed to parse
	KindNoRecentPlays                     // Zero albums in the period
	KindImageFetchFailed                  // Artwork download or decode failed
	KindNoImagesAvailable                 // No album has artwork at the requested size
)

var kindNames = map[Kind]string{
	KindUnknownOption:     "UnknownOption",
	KindInvalidUser:       "InvalidUser",
	KindRequestFailed:     "RequestFailed",
	KindNetworkError:      "NetworkError",
	KindResponseMalformed: "ResponseMalformed",
	KindNoRecentPlays:     "NoRecentPlays",
	KindImageFetchFailed:  "ImageFetchFailed",
	KindNoImagesAvailable: "NoImagesAvailable",
}

// String returns the kind's name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified pipeline failure.
//
// Only the fields relevant to the Kind are set.
type Error struct {
	Kind       Kind
	Username   string // InvalidUser, NoRecentPlays, NoImagesAvailable
	Option     string // UnknownOption
	Label      string // UnknownOption
	StatusCode int    // RequestFailed
	URL        string // ImageFetchFailed
	Err        error  // Underlying cause, if any
}

// Error returns a human readable message.
func (e *Error) Error() string {
	return "collage: " + e.message()
}

// message describes the failure without the package prefix.
func (e *Error) message() string {
	var msg string
	switch e.Kind {
	case KindUnknownOption:
		msg = fmt.Sprintf("unknown %s option %q", e.Option, e.Label)
	case KindInvalidUser:
		msg = fmt.Sprintf("user %q does not exist", e.Username)
	case KindRequestFailed:
		msg = fmt.Sprintf("request failed (%d)", e.StatusCode)
	case KindNetworkError:
		msg = "network error"
	case KindResponseMalformed:
		msg = "malformed response"
	case KindNoRecentPlays:
		msg = fmt.Sprintf("user %q has no plays in the requested period", e.Username)
	case KindImageFetchFailed:
		msg = fmt.Sprintf("failed to fetch image %s", e.URL)
	case KindNoImagesAvailable:
		msg = fmt.Sprintf("no artwork available for user %q at the requested size", e.Username)
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
//
// This allows errors.Is(err, collage.ErrInvalidUser).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnknownOption     = &Error{Kind: KindUnknownOption}
	ErrInvalidUser       = &Error{Kind: KindInvalidUser}
	ErrRequestFailed     = &Error{Kind: KindRequestFailed}
	ErrNetwork           = &Error{Kind: KindNetworkError}
	ErrResponseMalformed = &Error{Kind: KindResponseMalformed}
	ErrNoRecentPlays     = &Error{Kind: KindNoRecentPlays}
	ErrImageFetchFailed  = &Error{Kind: KindImageFetchFailed}
	ErrNoImagesAvailable = &Error{Kind: KindNoImagesAvailable}
)

// KindOf returns the Kind of err, or 0 if err is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Outcome names the result of a run for logs, metrics and history: "ok",
// "canceled", "timeout", a Kind name, or "error" for anything else.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	if k := KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}

// Present formats err for display as "[<kind>] - <message>".
func Present(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return fmt.Sprintf("[%s] - %s", e.Kind, e.message())
	}
	return fmt.Sprintf("[%s] - %v", Outcome(err), err)
}
