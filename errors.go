// Package neogql holds the error vocabulary shared by the neogql loader,
// graph builder and GraphQL extension.
package neogql

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for schema construction.
var (
	// ErrUnknownFieldKind is returned when a field cannot be classified as a
	// scalar field or a relationship to a node, interface or union.
	ErrUnknownFieldKind = errors.New("neogql: unknown field kind")

	// ErrInvalidDirective is returned when a directive usage carries arguments
	// of the wrong type or shape.
	ErrInvalidDirective = errors.New("neogql: invalid directive usage")

	// ErrUnresolvedType is returned when a field refers to a type that is not
	// declared in the schema.
	ErrUnresolvedType = errors.New("neogql: unresolved type")
)

// UnresolvedTypeError represents a reference to an undeclared type.
type UnresolvedTypeError struct {
	Name     string // Referenced type name
	Referrer string // "Type.field" holding the reference
}

// Error returns the error string.
func (e *UnresolvedTypeError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("neogql: unresolved type %q (referenced by %s)", e.Name, e.Referrer)
	}
	return fmt.Sprintf("neogql: unresolved type %q", e.Name)
}

// Is reports whether the target error matches UnresolvedTypeError.
// This allows errors.Is(err, ErrUnresolvedType) to return true.
func (e *UnresolvedTypeError) Is(err error) bool {
	return err == ErrUnresolvedType
}

// NewUnresolvedTypeError returns a new UnresolvedTypeError.
func NewUnresolvedTypeError(name, referrer string) *UnresolvedTypeError {
	return &UnresolvedTypeError{Name: name, Referrer: referrer}
}

// IsUnresolvedType returns true if the error is an UnresolvedTypeError.
func IsUnresolvedType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnresolvedType)
}

// DirectiveError represents a malformed directive usage on a field.
type DirectiveError struct {
	Directive string // Directive name without "@"
	Argument  string // Offending argument, if any
	Field     string // "Type.field"
	Reason    string
}

// Error returns the error string.
func (e *DirectiveError) Error() string {
	if e.Argument != "" {
		return fmt.Sprintf("neogql: @%s(%s) on %s: %s", e.Directive, e.Argument, e.Field, e.Reason)
	}
	return fmt.Sprintf("neogql: @%s on %s: %s", e.Directive, e.Field, e.Reason)
}

// Is reports whether the target error matches DirectiveError.
func (e *DirectiveError) Is(err error) bool {
	return err == ErrInvalidDirective
}

// NewDirectiveError returns a new DirectiveError.
func NewDirectiveError(directive, argument, field, reason string) *DirectiveError {
	return &DirectiveError{Directive: directive, Argument: argument, Field: field, Reason: reason}
}

// IsDirectiveError returns true if the error is a DirectiveError.
func IsDirectiveError(err error) bool {
	if err == nil {
		return false
	}
	var e *DirectiveError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidDirective)
}

// ConfigurationError marks a fatal programmer or configuration error raised
// while building a schema. It is never recovered by the generator.
type ConfigurationError struct {
	Subject string // What was being configured or built
	Err     error  // Underlying error
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("neogql: configuration error in %s: %v", e.Subject, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError returns a new ConfigurationError, or nil if err is nil.
func NewConfigurationError(subject string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Subject: subject, Err: err}
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e)
}
