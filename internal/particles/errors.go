package particles

import (
	"errors"
	"fmt"
)

// ErrEngineUnusable is returned by every Engine operation after an earlier
// operation panicked while holding the engine. Only Reset clears it.
var ErrEngineUnusable = errors.New("engine unusable")

// InputError reports an argument or configuration value the engine refuses.
// The engine state is left untouched.
type InputError struct {
	Field   string
	Value   any
	Message string
}

func newInputError(field string, value any, msg string) *InputError {
	return &InputError{Field: field, Value: value, Message: msg}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

// MissingRuleError means two populated groups have no coefficient, typically
// after SetRules with a matrix that does not cover the current groups.
type MissingRuleError struct {
	From, To string
}

func (e *MissingRuleError) Error() string {
	return fmt.Sprintf("no rule for %s -> %s", e.From, e.To)
}

// PoisonedError carries the panic that made the engine unusable.
type PoisonedError struct {
	Op    string
	Cause any
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Op, e.Cause)
}

func (e *PoisonedError) Unwrap() error {
	return ErrEngineUnusable
}

// IsInputError reports whether err (or anything it wraps) is an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsMissingRuleError reports whether err is a MissingRuleError.
func IsMissingRuleError(err error) bool {
	var me *MissingRuleError
	return errors.As(err, &me)
}

// IsUnusable reports whether err means the engine must be reset.
func IsUnusable(err error) bool {
	return errors.Is(err, ErrEngineUnusable)
}
