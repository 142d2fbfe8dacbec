// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package errors

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	// MissingConfiguration is returned when a required context variable
	// is absent or empty.
	MissingConfiguration = errors.ConstError("missing configuration")

	// ConflictingJobDefinition is returned when a domain's job collides
	// with an incompatible job already provisioned under the same name.
	ConflictingJobDefinition = errors.ConstError("conflicting job definition")

	// ResourceNamingConflict is returned when a caller specified resource
	// name is already bound to an incompatible resource.
	ResourceNamingConflict = errors.ConstError("resource naming conflict")
)

// MissingConfigurationError identifies the context variable that was not
// supplied.
type MissingConfigurationError struct {
	Key string
}

// NewMissingConfiguration returns an error for the given context key.
func NewMissingConfiguration(key string) error {
	return &MissingConfigurationError{Key: key}
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("context variable %s is required", e.Key)
}

// Unwrap returns MissingConfiguration.
func (e *MissingConfigurationError) Unwrap() error {
	return MissingConfiguration
}

// ConflictingJobDefinitionError identifies the domain whose job could not
// be provisioned.
type ConflictingJobDefinitionError struct {
	Domain string
	Reason string
}

// NewConflictingJobDefinition returns an error for the given domain.
func NewConflictingJobDefinition(domain, format string, args ...any) error {
	return &ConflictingJobDefinitionError{
		Domain: domain,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *ConflictingJobDefinitionError) Error() string {
	return fmt.Sprintf("job for domain %q conflicts with an existing job: %s", e.Domain, e.Reason)
}

// Unwrap returns ConflictingJobDefinition.
func (e *ConflictingJobDefinitionError) Unwrap() error {
	return ConflictingJobDefinition
}

// ResourceNamingConflictError identifies the resource name that is
// already taken.
type ResourceNamingConflictError struct {
	Name   string
	Reason string
}

// NewResourceNamingConflict returns an error for the given resource name.
func NewResourceNamingConflict(name, format string, args ...any) error {
	return &ResourceNamingConflictError{
		Name:   name,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *ResourceNamingConflictError) Error() string {
	return fmt.Sprintf("resource name %q is already taken: %s", e.Name, e.Reason)
}

// Unwrap returns ResourceNamingConflict.
func (e *ResourceNamingConflictError) Unwrap() error {
	return ResourceNamingConflict
}
