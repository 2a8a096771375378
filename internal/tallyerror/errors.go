// Package tallyerror defines the error taxonomy shared by the Tally
// connector: conversion errors raised while mapping XML fragments to
// entities, transport availability errors, and failed cross-entity
// reference lookups. All conversion errors unwrap to ErrConversion and
// all availability errors match ErrNotAvailable, so callers can branch
// with errors.Is without knowing the concrete type.
package tallyerror

import (
	"errors"
	"fmt"
)

// ErrConversion is the root of the conversion error hierarchy.
var ErrConversion = errors.New("tally: conversion error")

// ErrNotAvailable indicates the Tally endpoint could not be reached.
var ErrNotAvailable = errors.New("tally: not available")

// TagNotFoundError is returned when a required tag yields no candidates
// in the fragment being mapped.
type TagNotFoundError struct {
	Tag    string
	Entity string
}

func (e *TagNotFoundError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("tag '%s' not found while populating %s", e.Tag, e.Entity)
	}
	return fmt.Sprintf("tag '%s' not found", e.Tag)
}

func (e *TagNotFoundError) Unwrap() error { return ErrConversion }

// TagAmbiguousError is returned when a non-list tag matches more than one
// candidate. Ambiguity signals a schema mismatch, not missing data, so it
// is raised regardless of the field's required flag.
type TagAmbiguousError struct {
	Tag   string
	Count int
}

func (e *TagAmbiguousError) Error() string {
	return fmt.Sprintf("tag '%s' is ambiguous: %d candidates", e.Tag, e.Count)
}

func (e *TagAmbiguousError) Unwrap() error { return ErrConversion }

// ConverterNotSupportedError is returned when a schema field has no
// usable converter for its declared Go type.
type ConverterNotSupportedError struct {
	Tag  string
	Type string
}

func (e *ConverterNotSupportedError) Error() string {
	return fmt.Sprintf("no converter for tag '%s' (type %s)", e.Tag, e.Type)
}

func (e *ConverterNotSupportedError) Unwrap() error { return ErrConversion }

// ValueError wraps a scalar conversion failure (malformed boolean text,
// unparseable number, bad date) together with the offending input.
type ValueError struct {
	Converter string
	Text      string
	Err       error
}

func (e *ValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot convert '%s': %v", e.Converter, e.Text, e.Err)
	}
	return fmt.Sprintf("%s: cannot convert '%s'", e.Converter, e.Text)
}

func (e *ValueError) Unwrap() error { return ErrConversion }

// NotAvailableError is raised on any transport failure, including
// timeouts. The underlying error is preserved for diagnostics.
type NotAvailableError struct {
	Endpoint string
	Err      error
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("tally endpoint %s not available: %v", e.Endpoint, e.Err)
}

func (e *NotAvailableError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotAvailable) match regardless of the
// wrapped transport error.
func (e *NotAvailableError) Is(target error) bool { return target == ErrNotAvailable }

// ReferenceError is returned when a cross-entity name lookup fails,
// e.g. a stock item naming a parent group that the masters collection
// does not contain.
type ReferenceError struct {
	Collection string
	Name       string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("referenced %s '%s' not found", e.Collection, e.Name)
}
