package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "connect", "read", "fetch")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// AuthError represents a failure to sign or authenticate the order-event
// stream. Never retriable without operator intervention; surfaced to the
// user as a connection-error alert.
type AuthError struct {
	Request string
	Err     error
}

func (e *AuthError) Error() string {
	return "auth error [" + e.Request + "]: " + e.Err.Error()
}

func (e *AuthError) IsRetriable() bool {
	return false
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrStreamClosed signals that a delivery loop has died. It is the
	// connection-fatal condition: never parsed as a payload, always triggers
	// a supervised reconnect.
	ErrStreamClosed = errors.New("stream closed")

	// ErrBadResponse is returned on a non-2xx response from the REST API.
	ErrBadResponse = errors.New("bad response")

	// ErrNoPrice is returned when a VWAP or last price is requested before
	// any trade has been observed for the symbol.
	ErrNoPrice = errors.New("price not yet available")

	// ErrUnknownSymbol is returned for symbols outside the configured set.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
