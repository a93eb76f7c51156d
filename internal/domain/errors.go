package domain

import (
	"errors"
	"fmt"
)

// Fatal pipeline conditions. Only these abort a run; every other failure is
// logged at the observing stage and substituted with a documented default.
var (
	ErrMissingTable      = errors.New("articles table does not exist")
	ErrMissingEnvelope   = errors.New("response envelope missing from API payload")
	ErrMissingCredential = errors.New("required API credential is not configured")
)

// StatusError reports a non-success HTTP status from the news API.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("news API request failed: %s", e.Status)
}
