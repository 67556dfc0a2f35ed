package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyspace/internal/errors"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := errors.NewNotFoundOrCompletedError(42)

	assert.True(t, stderrors.Is(err, errors.ErrNotFoundOrCompleted))
	assert.False(t, stderrors.Is(err, errors.ErrNotFound))

	wrapped := fmt.Errorf("complete review: %w", err)
	assert.True(t, stderrors.Is(wrapped, errors.ErrNotFoundOrCompleted))
}

func TestAppError_Status(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errors.NewNotFoundError("card", 1).Status)
	assert.Equal(t, http.StatusNotFound, errors.NewNotFoundOrCompletedError(1).Status)
	assert.Equal(t, http.StatusConflict, errors.NewDuplicateNameError("topic", "Go").Status)
	assert.Equal(t, http.StatusBadRequest, errors.NewValidationError("rating", "must be 1, 2 or 3").Status)
	assert.Equal(t, http.StatusUnauthorized, errors.NewUnauthorizedError("token required").Status)
	assert.Equal(t, http.StatusTooManyRequests, errors.NewRateLimitedError().Status)
}

func TestAppError_WrapsUnderlying(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")

	appErr, ok := errors.As(fmt.Errorf("outer: %w", err))
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
}
