package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/npezzotti/go-hostly/internal/blobstore"
	"github.com/npezzotti/go-hostly/internal/database"
)

type ApiError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func newApiError(code int) *ApiError {
	return &ApiError{
		StatusCode: code,
		Message:    lower(http.StatusText(code)),
	}
}

func NewBadRequestError() *ApiError {
	return newApiError(http.StatusBadRequest)
}

func NewNotFoundError() *ApiError {
	return newApiError(http.StatusNotFound)
}

func NewInternalServerError(err error) *ApiError {
	e := newApiError(http.StatusInternalServerError)
	e.Err = err
	return e
}

func NewUnauthorizedError() *ApiError {
	return newApiError(http.StatusUnauthorized)
}

func NewForbiddenError() *ApiError {
	return newApiError(http.StatusForbidden)
}

func NewTooManyRequestsError() *ApiError {
	return newApiError(http.StatusTooManyRequests)
}

// errorResponse maps repository and blob store errors onto HTTP errors.
// Client-facing messages are kept for everything but internal failures.
func errorResponse(err error) *ApiError {
	var (
		apiErr   *ApiError
		validErr *database.ValidationError
		nfErr    *database.NotFoundError
		confErr  *database.ConflictError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &validErr):
		return &ApiError{StatusCode: http.StatusBadRequest, Message: validErr.Message, Err: err}
	case errors.As(err, &nfErr):
		return &ApiError{StatusCode: http.StatusNotFound, Message: nfErr.Error(), Err: err}
	case errors.As(err, &confErr):
		return &ApiError{StatusCode: http.StatusConflict, Message: confErr.Error(), Err: err}
	case errors.Is(err, blobstore.ErrTooLarge):
		return &ApiError{StatusCode: http.StatusRequestEntityTooLarge, Message: err.Error(), Err: err}
	case errors.Is(err, blobstore.ErrUnsupported), errors.Is(err, blobstore.ErrEmpty):
		return &ApiError{StatusCode: http.StatusBadRequest, Message: err.Error(), Err: err}
	}

	return NewInternalServerError(err)
}
