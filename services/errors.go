package services

import (
	"errors"
	"strings"

	"foodshare/validation"
)

var (
	ErrNameTaken          = errors.New("name already exists")
	ErrInvalidCredentials = errors.New("incorrect name or password")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrTargetNotFound     = errors.New("feedback target not found")
	ErrStoreFailure       = errors.New("store failure")
)

// ValidationError carries every violated rule of a submission
type ValidationError struct {
	Violations []validation.Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}
