package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is matched by DuplicateNameError
	ErrDuplicateName = errors.New("duplicate name")
	// ErrInUse is matched by InUseError
	ErrInUse = errors.New("in use")
	// ErrNotFound is matched by NotFoundError
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by ValidationError
	ErrValidation = errors.New("validation failed")
)

// DuplicateNameError is returned when a unique name is already taken
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// InUseError is returned when deleting something other rows still reference
type InUseError struct {
	Entity     string
	Name       string
	References int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s %q is used by %d project(s)", e.Entity, e.Name, e.References)
}

func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

// NotFoundError is returned when the addressed row does not exist
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError rejects input before anything is written
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ImportEntryError describes why one record of a scenario import was skipped
type ImportEntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *ImportEntryError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *ImportEntryError) Unwrap() error {
	return e.Err
}
