package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{Invalid("flatNumber", "must be 3 or 4 digits"), http.StatusBadRequest, "validation_failed"},
		{ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{fmt.Errorf("delete listing: %w", ErrUnauthorized), http.StatusForbidden, "unauthorized"},
		{ErrProfileIncomplete, http.StatusForbidden, "profile_incomplete"},
		{fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{ErrUploadFailed, http.StatusBadGateway, "upload_failed"},
		{ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{ErrWriteFailed, http.StatusServiceUnavailable, "write_failed"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestCollector(t *testing.T) {
	t.Run("no errors yields nil", func(t *testing.T) {
		var c Collector
		c.Require("name", "Ramesh")
		assert.NoError(t, c.Err())
	})

	t.Run("first message per field wins", func(t *testing.T) {
		var c Collector
		c.Require("name", "  ")
		c.Add("name", "too short")
		c.Add("phoneNumber", "is required")

		err := c.Err()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, map[string]string{
			"name":        "is required",
			"phoneNumber": "is required",
		}, FieldErrors(err))
		assert.Equal(t, "validation failed: name: is required; phoneNumber: is required", err.Error())
	})
}
