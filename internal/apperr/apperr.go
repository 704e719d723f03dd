// Package apperr defines the error kinds surfaced by the marketplace core.
// Callers branch on kind with errors.Is instead of matching message strings.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateSlug indicates a course with the derived slug already exists.
	ErrDuplicateSlug = errors.New("duplicate slug")
	// ErrForbidden indicates the caller is not the owning instructor.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the addressed resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPublishGate indicates the minimum-lesson-count gate is not met.
	ErrPublishGate = errors.New("publish gate not met")
	// ErrNotFree indicates a free enrollment was attempted on a paid course.
	ErrNotFree = errors.New("course is not free")
	// ErrNotPaid indicates a paid checkout was attempted on a free course.
	ErrNotPaid = errors.New("course is not paid")
	// ErrConflict indicates an optimistic-concurrency loss on a stale write.
	ErrConflict = errors.New("conflict")
	// ErrInvalidPermutation indicates a reorder list that is not a permutation
	// of the current lesson id set.
	ErrInvalidPermutation = errors.New("invalid lesson permutation")
	// ErrNoActiveIntent indicates no live checkout intent exists for the caller.
	ErrNoActiveIntent = errors.New("no active checkout intent")
	// ErrExternal indicates a storage or payment processor failure.
	ErrExternal = errors.New("external service failure")
)

// New tags an error with the given kind.
func New(kind error, msg string) error {
	return errors.Join(kind, errors.New(strings.TrimSpace(msg)))
}

// Wrap tags an underlying cause with the given kind, preserving the chain.
func Wrap(kind error, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return errors.Join(kind, fmt.Errorf("%s: %w", op, cause))
}

// External wraps a collaborator failure without leaking transport detail to
// the rendered message.
func External(op string, cause error) error {
	return Wrap(ErrExternal, op, cause)
}
