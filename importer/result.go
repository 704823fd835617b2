package importer

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/index"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
)

// ErrMissingField is wrapped by the error of a MissingRequiredField failure.
var ErrMissingField = errors.New("required resource is missing")

// Reason classifies why an import failed.
type Reason int

const (
	ContainerUnreadable Reason = iota + 1
	MalformedContainer
	MissingRequiredField
	InvalidType
	InstallError

	// FieldError is a failure to set the short description, or any other field when
	// optional failures abort the import.
	FieldError
)

func (r Reason) String() string {
	switch r {
	case ContainerUnreadable:
		return "container unreadable"
	case MalformedContainer:
		return "malformed container"
	case MissingRequiredField:
		return "missing required field"
	case InvalidType:
		return "invalid type"
	case InstallError:
		return "install error"
	case FieldError:
		return "field error"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Failure is the fatal error of an import.
type Failure struct {
	Reason Reason

	// Field is the field that failed, zero if the failure is not about a field.
	Field registry.FieldKind

	Err error
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// FieldOutcome is the result of setting one field.
type FieldOutcome struct {
	Kind registry.FieldKind

	// Key is the name of the resource the value was read from.
	Key string

	// Err is nil if the field was set.
	Err error
}

// Result describes what one import did. Fields and Indexes are filled in the order the
// operations happened, also when the import failed halfway.
type Result struct {
	// Source is the path of the container, empty for bare installs.
	Source string

	// Type is zero if the import failed before the type was known.
	Type mimetype.Type

	// Updated is true if the type was installed before the import.
	Updated bool

	Fields  []FieldOutcome
	Indexes []index.Outcome

	// Failure is nil if the import succeeded.
	Failure *Failure
}

// Ok returns true if the import succeeded. Optional fields may still have failed, see
// Fields.
func (r *Result) Ok() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, nil if the import succeeded.
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}

	return r.Failure
}

func (r *Result) fail(reason Reason, field registry.FieldKind, err error) Result {
	r.Failure = &Failure{Reason: reason, Field: field, Err: err}
	return *r
}
