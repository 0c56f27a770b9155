package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/listenup-library/internal/errors"
	"github.com/listenupapp/listenup-library/internal/validation"
)

type listingRequest struct {
	LibraryID string `json:"libraryId" validate:"required,entityid"`
	Sort      string `json:"sort,omitempty" validate:"max=64"`
	Limit     int    `json:"limit" validate:"gte=0,lte=500"`
	Page      int    `json:"page" validate:"gte=0"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(listingRequest{LibraryID: "lib_V1StGXR8Z5jdHi6B", Limit: 20, Page: 2})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       listingRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing library id",
			req:       listingRequest{},
			wantField: "libraryId",
			wantMsg:   "is required",
		},
		{
			name:      "malformed library id",
			req:       listingRequest{LibraryID: "lib/../etc"},
			wantField: "libraryId",
			wantMsg:   "must be a valid id",
		},
		{
			name:      "negative page",
			req:       listingRequest{LibraryID: "lib-1", Page: -1},
			wantField: "page",
			wantMsg:   "must be greater than or equal to 0",
		},
		{
			name:      "limit too large",
			req:       listingRequest{LibraryID: "lib-1", Limit: 501},
			wantField: "limit",
			wantMsg:   "must be less than or equal to 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok, "details should be a field map")
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_NonStructPassesThrough(t *testing.T) {
	v := validation.New()

	err := v.Validate(42)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	assert.False(t, domainerrors.As(err, &domainErr))
}
