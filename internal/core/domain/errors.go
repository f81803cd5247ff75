package domain

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound      = errors.New("catalog job not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
	ErrMalformedResult  = errors.New("malformed stage result")
	ErrCollaboratorInit = errors.New("collaborator initialization failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
