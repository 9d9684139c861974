package hfcand

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("creator is closed")
)

// ConfigError names the offending configuration field. It matches
// ErrInvalidConfig with errors.Is.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field string
	cause error
}

func (e *ConfigError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%v: %s", ErrInvalidConfig, e.Field)
	}
	return fmt.Sprintf("%v: %s: %v", ErrInvalidConfig, e.Field, e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// Is reports ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
