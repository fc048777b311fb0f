package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying every failure the gateway can report. Concrete
// errors wrap one of these so callers can match with errors.Is while still
// seeing the full user-facing message.
var (
	// ErrInvalidAddress indicates a malformed address or search scope.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnknownService indicates the requested service is not registered.
	ErrUnknownService = errors.New("service not found")

	// ErrValidationFailed indicates the proxied service failed its startup
	// capability probe and calls to it are refused.
	ErrValidationFailed = errors.New("service failed validation")

	// ErrBackendUnavailable indicates a transport or handler failure while
	// serving a request; it always wraps the underlying cause.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrUnsupportedAction indicates an invoke named an action the backend
	// does not implement.
	ErrUnsupportedAction = errors.New("unknown action")

	// ErrResourceUnavailable indicates a fetch could not produce the resource.
	ErrResourceUnavailable = errors.New("resource not found")

	// ErrDuplicateName indicates a registration collision during startup.
	ErrDuplicateName = errors.New("duplicate service name")

	// ErrElicitationUnsupported indicates the caller's transport cannot
	// answer elicitation requests.
	ErrElicitationUnsupported = errors.New("elicitation not supported by caller")
)

// UnknownServiceError reports a request for a service that is not in the
// routing table. Available holds the registered names in registration order.
type UnknownServiceError struct {
	Name      string
	Available []string
}

func (e *UnknownServiceError) Error() string {
	available := strings.Join(e.Available, ", ")
	if available == "" {
		available = "none"
	}
	return fmt.Sprintf("Service '%s' not found. Available services: %s", e.Name, available)
}

func (e *UnknownServiceError) Unwrap() error { return ErrUnknownService }

// ValidationFailedError reports a call to a proxied service that did not pass
// startup validation.
type ValidationFailedError struct {
	Name string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("Service '%s' failed validation and is not available", e.Name)
}

func (e *ValidationFailedError) Unwrap() error { return ErrValidationFailed }

// UnsupportedActionError reports an invoke for an action the backend does not
// implement. Supported holds the backend's declared actions, sorted.
type UnsupportedActionError struct {
	Action    string
	Supported []string
}

func (e *UnsupportedActionError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("Unknown action: %s", e.Action)
	}
	return fmt.Sprintf("Unknown action: %s. Supported actions: %s", e.Action, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedActionError) Unwrap() error { return ErrUnsupportedAction }

// invalidAddress wraps ErrInvalidAddress with the offending address.
func invalidAddress(address string) error {
	return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
}

// resourceUnavailable wraps ErrResourceUnavailable with the address that
// could not be resolved.
func resourceUnavailable(address string) error {
	return fmt.Errorf("%w: %s", ErrResourceUnavailable, address)
}

// backendUnavailable wraps both ErrBackendUnavailable and the transport
// cause, so errors.Is matches either.
func backendUnavailable(name string, err error) error {
	return fmt.Errorf("%w: service '%s': %w", ErrBackendUnavailable, name, err)
}

// duplicateName wraps ErrDuplicateName with the colliding service name.
func duplicateName(name string) error {
	return fmt.Errorf("%w: '%s'", ErrDuplicateName, name)
}
