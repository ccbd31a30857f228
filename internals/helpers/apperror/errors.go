// Package apperror is the error taxonomy shared by the entity store, the
// integrity rules and the request workflow. Every failure carries the entity
// and, where it applies, the field or constraint that was violated so the
// calling layer can render a message without parsing strings.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindReferential
	KindConflict
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindReferential:
		return "referential"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Sentinels for errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrReferential = errors.New("referential error")
	ErrConflict    = errors.New("conflict error")
	ErrNotFound    = errors.New("not found error")
	ErrForbidden   = errors.New("forbidden error")
)

var sentinels = map[Kind]error{
	KindValidation:  ErrValidation,
	KindReferential: ErrReferential,
	KindConflict:    ErrConflict,
	KindNotFound:    ErrNotFound,
	KindForbidden:   ErrForbidden,
}

type Error struct {
	Kind       Kind
	Entity     string
	Field      string
	Constraint string
	Message    string
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
	// Retryable marks conflicts caused by lock timeouts or lost races
	// that may succeed when the caller tries again.
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Entity != "" {
		b.WriteString(" [")
		b.WriteString(e.Entity)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

/* ===========================
   Constructors
   =========================== */

func Validation(entity string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Fields: fields}
}

func ValidationField(entity, field, constraint, msg string) *Error {
	return &Error{
		Kind:       KindValidation,
		Entity:     entity,
		Field:      field,
		Constraint: constraint,
		Message:    msg,
		Fields:     map[string]string{field: msg},
	}
}

func Referential(entity, field string, id uint) *Error {
	return &Error{
		Kind:       KindReferential,
		Entity:     entity,
		Field:      field,
		Constraint: "foreign_key",
		Message:    fmt.Sprintf("referenced row %d does not exist", id),
	}
}

func Conflict(entity, constraint, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Constraint: constraint, Message: msg}
}

func RetryableConflict(entity, msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Constraint: "concurrency", Message: msg, Retryable: true, Err: cause}
}

func NotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: fmt.Sprintf("id %d not found", id)}
}

func Forbidden(entity, msg string) *Error {
	return &Error{Kind: KindForbidden, Entity: entity, Message: msg}
}

/* ===========================
   Inspection
   =========================== */

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
