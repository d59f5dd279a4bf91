package api

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/http/response"
	"github.com/bookreview/bookreview-server/internal/logger"
)

// EnvelopeTransformer wraps every huma response body in the shared
// envelope. Error bodies become {"success":false,"error":{...}}.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.status >= http.StatusInternalServerError && ctx != nil {
			logger.FromContext(ctx.Context(), nil).ErrorContext(ctx.Context(), "request failed",
				"status", apiErr.status,
				"error", apiErr.cause,
			)
		}
		return response.Fail(apiErr.Code, apiErr.Message, apiErr.Details), nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= http.StatusBadRequest {
		// Non-APIError failure bodies, e.g. huma's own error model.
		if se, ok := v.(huma.StatusError); ok {
			return response.Fail(string(response.CodeForStatus(code)), se.Error(), nil), nil
		}
	}

	return response.Ok(v), nil
}
