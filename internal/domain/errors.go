package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an action does not apply to the
	// session's current stage.
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrInvalidSelection is returned when a candidate index is out of range.
	ErrInvalidSelection = errors.New("invalid candidate selection")
)

// ValidationError reports unusable user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NoMatchError is returned when the geocoder yields no candidate for a query.
// The user is asked to re-enter the text.
type NoMatchError struct {
	Role  Role
	Query string
	Cause error
}

func (e *NoMatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no match for %s location %q: %v", e.Role, e.Query, e.Cause)
	}
	return fmt.Sprintf("no match for %s location %q", e.Role, e.Query)
}

func (e *NoMatchError) Unwrap() error { return e.Cause }

// RouteUnavailableError is returned when no viable path exists between the
// confirmed locations, or the routing collaborator failed.
type RouteUnavailableError struct {
	From  string
	To    string
	Cause error
}

func (e *RouteUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no route from %q to %q: %v", e.From, e.To, e.Cause)
	}
	return fmt.Sprintf("no route from %q to %q", e.From, e.To)
}

func (e *RouteUnavailableError) Unwrap() error { return e.Cause }
