package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindUnauthorized:     http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindMethodNotAllowed: http.StatusMethodNotAllowed,
		KindConflict:         http.StatusConflict,
		KindRateLimited:      http.StatusTooManyRequests,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("Stock news not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestFrom(t *testing.T) {
	t.Run("classified error passes through", func(t *testing.T) {
		orig := Forbidden("deactivated")
		assert.Same(t, orig, From(fmt.Errorf("wrap: %w", orig)))
	})

	t.Run("unclassified error becomes internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		e := From(cause)
		assert.Equal(t, KindInternal, e.Kind)
		assert.ErrorIs(t, e, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
	})
}
