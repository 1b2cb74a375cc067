// Package errors provides structured error types for movie-wallpaper operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindParse represents malformed user input (resolution tokens, missing arguments).
	KindParse ErrorKind = iota
	// KindIO represents directory or file access failures.
	KindIO
	// KindExternalTool represents a collaborator process that exited non-zero or could not run.
	KindExternalTool
	// KindInvalidConfig represents configuration that cannot produce a layout.
	KindInvalidConfig
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "Parse error"
	case KindIO:
		return "I/O error"
	case KindExternalTool:
		return "External tool error"
	case KindInvalidConfig:
		return "Invalid configuration"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandWait means waiting for the command failed.
	CommandWait
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandWait:
		return fmt.Sprintf("failed to wait for %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for movie-wallpaper operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Message == "" && e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Underlying)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// ParseError reports a malformed input token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid token %q: %s", e.Token, e.Reason)
}

// NewParseError creates a parse error naming the offending token.
func NewParseError(token, reason string) *CoreError {
	return &CoreError{Kind: KindParse, Underlying: &ParseError{Token: token, Reason: reason}}
}

// NewMissingArgumentError creates a parse error for a required argument that was not supplied.
func NewMissingArgumentError(name string) *CoreError {
	return &CoreError{Kind: KindParse, Message: fmt.Sprintf("missing required argument %s", name)}
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewInvalidConfigError creates a new configuration error.
func NewInvalidConfigError(message string) *CoreError {
	return &CoreError{Kind: KindInvalidConfig, Message: message}
}

// WrapInvalidConfig classifies an existing error (typically a wrapped sentinel) as InvalidConfig.
func WrapInvalidConfig(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindInvalidConfig, Message: message, Underlying: underlying}
}

// NewCommandError creates a new command execution error.
func NewCommandError(cmd string, kind CommandErrorKind, underlying error) *CoreError {
	cmdErr := &CommandError{
		Command:    cmd,
		Kind:       kind,
		Underlying: underlying,
	}
	return &CoreError{Kind: KindExternalTool, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandStart, err)
}

// NewCommandWaitError creates an error for when waiting for a command fails.
func NewCommandWaitError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandWait, err)
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindExternalTool, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewExternalToolError creates an error for a collaborator that produced unusable output.
func NewExternalToolError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindExternalTool, Message: message, Underlying: underlying}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsParse checks if the error is a parse error.
func IsParse(err error) bool {
	return IsKind(err, KindParse)
}

// IsInvalidConfig checks if the error is an invalid-configuration error.
func IsInvalidConfig(err error) bool {
	return IsKind(err, KindInvalidConfig)
}

// IsExternalTool checks if the error came from a collaborator process.
func IsExternalTool(err error) bool {
	return IsKind(err, KindExternalTool)
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
