package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/pkg/apperror"
)

func TestErrorFormatting(t *testing.T) {
	base := errors.New("db down")

	e1 := apperror.New(apperror.ErrNotFound, "post %s not found", "abc")
	require.Equal(t, "post abc not found", e1.Error())

	e2 := apperror.Wrap(apperror.ErrStorage, base, "saving post")
	require.Equal(t, "saving post: db down", e2.Error())

	e3 := &apperror.Error{}
	require.Equal(t, "unknown error", e3.Error())
}

func TestIsMatchesKindAndCause(t *testing.T) {
	base := errors.New("root cause")
	err := apperror.Wrap(apperror.ErrStorage, base, "writing")

	require.ErrorIs(t, err, apperror.ErrStorage)
	require.ErrorIs(t, err, base)
	require.NotErrorIs(t, err, apperror.ErrNotFound)
}

func TestKindOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperror.New(apperror.ErrConflict, "busy"))
	require.Equal(t, apperror.ErrConflict, apperror.KindOf(err))
	require.Nil(t, apperror.KindOf(errors.New("plain")))
}

func TestValidationDetails(t *testing.T) {
	err := apperror.Validation("invalid payload", map[string]string{"media": "is required"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	require.Equal(t, "is required", err.Details()["media"])
}
