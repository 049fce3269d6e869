package errs

import "errors"

var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrEmailTaken is returned when another agent already uses the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnknownAgent is returned when a payload references an agent that
	// does not exist (as opposed to an unknown agent in the URL path).
	ErrUnknownAgent = errors.New("referenced agent does not exist")

	ErrAPIUnavailable = errors.New("api unavailable")
)
