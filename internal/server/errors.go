package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mekonnen/cv-studio/internal/imagetx"
)

// ErrNotFound indicates a referenced resource does not exist.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNoTemplates indicates a batch run was requested for a country with no
// saved templates.
type ErrNoTemplates struct {
	Country string
}

func (e *ErrNoTemplates) Error() string {
	return fmt.Sprintf("no templates saved for country: %s", e.Country)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var transient *imagetx.ErrTransient
	if errors.As(err, &transient) {
		return http.StatusBadGateway
	}
	switch err.(type) {
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation, *ErrNoTemplates:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
