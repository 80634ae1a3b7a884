package sqlfilter

import (
	"errors"
	"fmt"
)

// ErrEmptyCombinator is returned when an and/or combinator is submitted
// with an empty child sequence.
var ErrEmptyCombinator = errors.New("sqlfilter: combinator requires at least one child filter")

// UnknownFieldError reports a submitted filter field that is not part of
// the compiled filter set.
type UnknownFieldError struct {
	Set   string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("sqlfilter: unknown filter field %q in %s", e.Field, e.Set)
}

// ConflictingJoinError reports two EnsureJoin calls for the same alias with
// different join conditions. This is a programming misuse: the same alias
// name must always carry the same join intent within one scope.
type ConflictingJoinError struct {
	Alias string
}

func (e *ConflictingJoinError) Error() string {
	return fmt.Sprintf("sqlfilter: conflicting join conditions for alias %q", e.Alias)
}
