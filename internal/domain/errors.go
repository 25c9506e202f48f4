package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("access token required")
	ErrForbidden          = errors.New("invalid token")
	ErrUnsupportedMedia   = errors.New("only image files are allowed")
	ErrTransientOverload  = errors.New("model overloaded")
	ErrNotFound           = errors.New("not found")
)

// ValidationError 携带第一条未通过的字段规则
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
