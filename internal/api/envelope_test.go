package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/http/response"
)

func TestEnvelopeTransformer_WrapsSuccess(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]string{"hello": "world"})
	require.NoError(t, err)

	env, ok := out.(*response.Envelope)
	require.True(t, ok)
	assert.Equal(t, response.Version, env.V)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]string{"hello": "world"}, env.Data)
	assert.Nil(t, env.Error)
}

func TestEnvelopeTransformer_WrapsAPIError(t *testing.T) {
	apiErr := newAPIError(http.StatusInternalServerError, "ignored", domainerrors.NotFound("book not found"))

	out, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	env, ok := out.(*response.Envelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "book not found", env.Error.Message)
}

func TestNewAPIError(t *testing.T) {
	t.Run("domain error decides status", func(t *testing.T) {
		se := newAPIError(http.StatusInternalServerError, "unexpected", domainerrors.InvalidState("request is already approved"))
		assert.Equal(t, http.StatusConflict, se.GetStatus())
		assert.Equal(t, "INVALID_STATE", se.(*APIError).Code)
	})

	t.Run("wrapped domain error", func(t *testing.T) {
		wrapped := errors.Join(errors.New("context"), domainerrors.Forbidden("nope"))
		se := newAPIError(http.StatusInternalServerError, "unexpected", wrapped)
		assert.Equal(t, http.StatusForbidden, se.GetStatus())
	})

	t.Run("field errors become details", func(t *testing.T) {
		se := newAPIError(http.StatusUnprocessableEntity, "validation failed", &huma.ErrorDetail{
			Message:  "expected length >= 8",
			Location: "body.password",
		})
		apiErr := se.(*APIError)
		assert.Equal(t, "VALIDATION", apiErr.Code)
		details, ok := apiErr.Details.(map[string][]string)
		require.True(t, ok)
		require.Len(t, details["errors"], 1)
		assert.Contains(t, details["errors"][0], "body.password")
	})

	t.Run("internal errors keep their cause", func(t *testing.T) {
		cause := errors.New("disk full")
		se := newAPIError(http.StatusInternalServerError, "unexpected", cause)
		assert.ErrorIs(t, se.(*APIError), cause)
		assert.Equal(t, "INTERNAL", se.(*APIError).Code)
	})
}
