package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation")    // 400
	ErrNotFound     = errors.New("not found")     // 404
	ErrConflict     = errors.New("conflict")      // 409
	ErrBusinessRule = errors.New("business rule") // 409
	ErrUnauthorized = errors.New("unauthorized")  // 401
	ErrForbidden    = errors.New("forbidden")     // 403
)

// Order creation failures callers tell apart. All map to 400.
var (
	ErrProductsNotFound      = errors.New("some products not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrContactHandleRequired = errors.New("tgTag is required for order, provide it or set it in your profile")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrReferencedByOrder  = fmt.Errorf("%w: this product cannot be deleted because it is associated with existing orders", ErrBusinessRule)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a validation failure carrying per-field messages.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + " " + e.Message
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

func (fe *FieldErrors) Add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

// Err returns nil when nothing was added.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
