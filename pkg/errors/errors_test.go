package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, "persist notification")

	require.Equal(t, "persist notification: disk full", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	original := New("REQUEST_CLOSED", "Opening request already resolved", http.StatusConflict)

	converted := FromError(original)
	require.Same(t, original, converted)
}

func TestFromErrorWrapsGenericErrors(t *testing.T) {
	converted := FromError(errors.New("boom"))

	require.Equal(t, ErrInternalServer.Code, converted.Code)
	require.Equal(t, http.StatusInternalServerError, converted.StatusCode)
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestWithInternalCopies(t *testing.T) {
	cause := errors.New("no such table")
	err := ErrNotFound.WithInternal(cause)

	require.NotSame(t, ErrNotFound, err)
	require.Nil(t, ErrNotFound.Internal)
	require.ErrorIs(t, err, cause)
}
