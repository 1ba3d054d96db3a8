package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/npezzotti/go-hostly/internal/query"
)

type ValidationError = query.ValidationError

type NotFoundError struct {
	Resource string
	Key      any
}

func (e *NotFoundError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.Key)
}

type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// StorageFault wraps any store failure the repositories do not classify.
type StorageFault struct {
	Op  string
	Err error
}

func (e *StorageFault) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *StorageFault) Unwrap() error {
	return e.Err
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// constraintResources names the entity behind each constraint declared in
// the migrations.
var constraintResources = map[string]string{
	"listings_host_id_fkey":           "user",
	"message_threads_listing_id_fkey": "listing",
	"message_threads_host_id_fkey":    "user",
	"message_threads_guest_id_fkey":   "user",
	"messages_thread_id_fkey":         "thread",
	"messages_from_id_fkey":           "user",
	"messages_to_id_fkey":             "user",
	"users_username_key":              "user",
	"users_email_key":                 "user",
	"message_threads_unique_triple":   "thread",
}

// storeError classifies a driver error. Constraint violations become typed
// errors, everything else a StorageFault.
func storeError(op string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return &StorageFault{Op: op, Err: err}
	}

	resource, ok := constraintResources[pqErr.Constraint]
	if !ok {
		resource = pqErr.Table
	}

	switch pqErr.Code {
	case uniqueViolation:
		return &ConflictError{Resource: resource, Message: pqErr.Detail}
	case foreignKeyViolation:
		return &NotFoundError{Resource: resource}
	case checkViolation:
		return validationErrorf("%s violates %s", pqErr.Table, pqErr.Constraint)
	}

	return &StorageFault{Op: op, Err: err}
}
