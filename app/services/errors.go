package services

import (
	"fmt"

	"board/app/repositories"
)

// NotFoundError reports a missing post or comment.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Unwrap lets errors.Is match repositories.ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return repositories.ErrNotFound
}
