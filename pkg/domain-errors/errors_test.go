package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "invitation not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(nil, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestHasCode_WrappedChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load invitation")
	outer := fmt.Errorf("accept invitation: %w", err)

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, errors.Is(outer, cause))
}

func TestWrap_PreservesInnerCode(t *testing.T) {
	inner := New(CodeExpired, "invitation has expired")
	outer := Wrap(inner, CodeInternal, "accept failed")

	// Both codes are visible through the chain.
	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeExpired))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeForbidden, GetCode(New(CodeForbidden, "owner role required")))
	assert.Equal(t, CodeInternal, GetCode(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:      http.StatusBadRequest,
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeForbidden:       http.StatusForbidden,
		CodeNotFound:        http.StatusNotFound,
		CodeConflict:        http.StatusConflict,
		CodeAlreadyAccepted: http.StatusConflict,
		CodeExpired:         http.StatusGone,
		CodeInternal:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeConflict, "token already exists")
	require.EqualError(t, err, "conflict: token already exists")

	wrapped := Wrap(errors.New("duplicate key"), CodeConflict, "token already exists")
	require.EqualError(t, wrapped, "conflict: token already exists: duplicate key")
}
