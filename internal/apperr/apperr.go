package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds. Every error leaving the blog core carries exactly one of these.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateTitle = errors.New("duplicate title")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failure")
	ErrTransport      = errors.New("transport failure")
	ErrStorage        = errors.New("storage failure")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

type Error struct {
	Kind   error
	Op     string
	Msg    string
	Err    error
	Fields []FieldError
}

func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	// sentinel *Error values compare by kind and message
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind && t.Msg == e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches op and cause to a sentinel while keeping errors.Is against it working.
func Wrap(sentinel *Error, op string, cause error) error {
	return &Error{Kind: sentinel.Kind, Op: op, Msg: sentinel.Msg, Err: cause, Fields: sentinel.Fields}
}

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: ErrStorage, Op: op, Err: err}
}

func Transport(op string, err error) error {
	return &Error{Kind: ErrTransport, Op: op, Err: err}
}

func Forbidden(op, reason string) error {
	return &Error{Kind: ErrForbidden, Op: op, Msg: reason}
}

func Validation(op string, fields []FieldError) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: "invalid input", Fields: fields}
}

// KindOf reports the taxonomy kind of err, ErrStorage for anything unclassified.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrStorage
}

func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func ValidationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
