package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsHTTPError(t *testing.T) {
	t.Run("not found error", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", NewNotFoundError("Product not found"))

		httpErr, ok := AsHTTPError(err)

		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode())
		assert.Equal(t, CodeNotFound, httpErr.ErrorCode())
		assert.Equal(t, "Product not found", httpErr.Error())
	})

	t.Run("validation error keeps fields", func(t *testing.T) {
		err := NewValidationError("All fields are required", FieldError{Field: "price", Error: "required"})

		httpErr, ok := AsHTTPError(err)

		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode())
		assert.Equal(t, CodeValidation, httpErr.ErrorCode())

		var validationErr *ValidationError
		require.True(t, errors.As(httpErr, &validationErr))
		assert.Equal(t, []FieldError{{Field: "price", Error: "required"}}, validationErr.Fields)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := AsHTTPError(errors.New("boom"))

		assert.False(t, ok)
	})
}
