package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/geocoder89/listinghub/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	sentinel := apperr.New(apperr.KindNotFound, "Post not found")

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(sentinel))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(fmt.Errorf("lookup: %w", sentinel)))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(apperr.Validation("bad")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("db down")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(nil))
}

func TestWrap_KeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := apperr.Wrap(apperr.KindConflict, "Email already in use", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Email already in use", err.Message)
	assert.Contains(t, err.Error(), "duplicate key")
}
