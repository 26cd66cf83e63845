package binding

import (
	"errors"
	"fmt"
)

// Sentinel errors for binding reconciliation failures.
var (
	// ErrDuplicateTargetClaim is returned when two schemas claim one target.
	ErrDuplicateTargetClaim = errors.New("schemaforge: target claimed by more than one schema")

	// ErrEmptyClaimSet is returned when a schema claims no targets.
	ErrEmptyClaimSet = errors.New("schemaforge: schema claims no targets")

	// ErrUnresolvedTarget is returned when a claimed target was never registered.
	ErrUnresolvedTarget = errors.New("schemaforge: claimed target never registered")
)

// DuplicateTargetClaimError reports a structural authoring error: one named
// target claimed by two different schemas.
type DuplicateTargetClaimError struct {
	target string
	first  SchemaKey
	second SchemaKey
}

// Error returns the error string naming both claimants.
func (e *DuplicateTargetClaimError) Error() string {
	return fmt.Sprintf(
		"schemaforge: target %q is already claimed by schema %q in database %q and cannot also be claimed by schema %q in database %q",
		e.target, e.first.Schema, e.first.Database, e.second.Schema, e.second.Database)
}

// Is reports whether the target error matches DuplicateTargetClaimError.
func (e *DuplicateTargetClaimError) Is(err error) bool {
	return err == ErrDuplicateTargetClaim
}

// Target returns the contested target name.
func (e *DuplicateTargetClaimError) Target() string {
	return e.target
}

// NewDuplicateTargetClaimError returns a new DuplicateTargetClaimError.
func NewDuplicateTargetClaimError(target string, first, second SchemaKey) *DuplicateTargetClaimError {
	return &DuplicateTargetClaimError{target: target, first: first, second: second}
}

// IsDuplicateTargetClaim returns true if the error is a DuplicateTargetClaimError.
func IsDuplicateTargetClaim(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateTargetClaimError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicateTargetClaim)
}

// EmptyClaimSetError reports a schema left with zero claimed targets at
// end-of-run validation. A schema must generate something.
type EmptyClaimSetError struct {
	schema SchemaKey
}

// Error returns the error string.
func (e *EmptyClaimSetError) Error() string {
	return fmt.Sprintf(
		"schemaforge: schema %q in database %q claims no generation targets; claim at least one target or remove the schema",
		e.schema.Schema, e.schema.Database)
}

// Is reports whether the target error matches EmptyClaimSetError.
func (e *EmptyClaimSetError) Is(err error) bool {
	return err == ErrEmptyClaimSet
}

// NewEmptyClaimSetError returns a new EmptyClaimSetError.
func NewEmptyClaimSetError(schema SchemaKey) *EmptyClaimSetError {
	return &EmptyClaimSetError{schema: schema}
}

// IsEmptyClaimSet returns true if the error is an EmptyClaimSetError.
func IsEmptyClaimSet(err error) bool {
	if err == nil {
		return false
	}
	var e *EmptyClaimSetError
	return errors.As(err, &e) || errors.Is(err, ErrEmptyClaimSet)
}

// UnresolvedTargetError reports a claimed target name that never appeared on
// the generator side.
type UnresolvedTargetError struct {
	schema SchemaKey
	target string
}

// Error returns the error string.
func (e *UnresolvedTargetError) Error() string {
	return fmt.Sprintf(
		"schemaforge: schema %q in database %q claims target %q but no such target is registered",
		e.schema.Schema, e.schema.Database, e.target)
}

// Is reports whether the target error matches UnresolvedTargetError.
func (e *UnresolvedTargetError) Is(err error) bool {
	return err == ErrUnresolvedTarget
}

// Target returns the unresolved target name.
func (e *UnresolvedTargetError) Target() string {
	return e.target
}

// NewUnresolvedTargetError returns a new UnresolvedTargetError.
func NewUnresolvedTargetError(schema SchemaKey, target string) *UnresolvedTargetError {
	return &UnresolvedTargetError{schema: schema, target: target}
}

// IsUnresolvedTarget returns true if the error is an UnresolvedTargetError.
func IsUnresolvedTarget(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedTargetError
	return errors.As(err, &e) || errors.Is(err, ErrUnresolvedTarget)
}
