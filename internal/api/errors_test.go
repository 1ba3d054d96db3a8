package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/npezzotti/go-hostly/internal/blobstore"
	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/stretchr/testify/assert"
)

func Test_errorResponse(t *testing.T) {
	tcases := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "api error passes through",
			err:         NewForbiddenError(),
			wantCode:    http.StatusForbidden,
			wantMessage: "forbidden",
		},
		{
			name:        "validation",
			err:         &database.ValidationError{Message: "name is required"},
			wantCode:    http.StatusBadRequest,
			wantMessage: "name is required",
		},
		{
			name:        "not found",
			err:         fmt.Errorf("lookup: %w", &database.NotFoundError{Resource: "listing", Key: 4}),
			wantCode:    http.StatusNotFound,
			wantMessage: "listing 4 not found",
		},
		{
			name:        "conflict",
			err:         &database.ConflictError{Resource: "user", Message: "username already taken"},
			wantCode:    http.StatusConflict,
			wantMessage: "user conflict: username already taken",
		},
		{
			name:        "photo too large",
			err:         blobstore.ErrTooLarge,
			wantCode:    http.StatusRequestEntityTooLarge,
			wantMessage: blobstore.ErrTooLarge.Error(),
		},
		{
			name:        "unsupported photo",
			err:         blobstore.ErrUnsupported,
			wantCode:    http.StatusBadRequest,
			wantMessage: blobstore.ErrUnsupported.Error(),
		},
		{
			name:        "storage fault is hidden",
			err:         &database.StorageFault{Op: "create listing", Err: errors.New("connection reset")},
			wantCode:    http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := errorResponse(tc.err)
			assert.Equal(t, tc.wantCode, got.StatusCode)
			assert.Equal(t, tc.wantMessage, got.Message)
		})
	}
}
