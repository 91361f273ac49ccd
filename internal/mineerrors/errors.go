// Package mineerrors defines the fatal error kinds used across the
// mining pipeline (spec §7). All of them are terminal at the invocation
// boundary — the mining loop itself has no recoverable error paths.
package mineerrors

import "fmt"

// ArgumentError signals a bad CLI invocation.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return fmt.Sprintf("argument error: %s", e.Msg) }

// NewArgumentError wraps a formatted argument error.
func NewArgumentError(format string, args ...interface{}) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError signals a missing or invalid configuration file or key.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps an underlying error with a config-layer message.
func NewConfigError(msg string, err error) error {
	return &ConfigError{Msg: msg, Err: err}
}

// IOError signals a failure to open, read, or write a file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("io error: %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps an underlying I/O failure for a given path.
func NewIOError(path string, err error) error {
	return &IOError{Path: path, Err: err}
}

// FormatError signals a CSV header or row that could not be parsed.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return fmt.Sprintf("format error: %s", e.Msg) }

// NewFormatError wraps a formatted parse failure.
func NewFormatError(format string, args ...interface{}) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantError signals a violated structural invariant (e.g. a pattern
// length or zigzag count outside its valid range).
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return fmt.Sprintf("invariant error: %s", e.Msg) }

// NewInvariantError wraps a formatted invariant violation.
func NewInvariantError(format string, args ...interface{}) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}
