package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polychat/polychat/ai/llm"
	"github.com/polychat/polychat/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Client-facing messages, one per error kind. Detail goes to slog; raw
// provider or storage text never leaves the process.
const (
	msgInvalidRequest      = "The request could not be understood."
	msgUnsupportedProvider = "The requested provider is not supported."
	msgMissingCredential   = "No API key was provided for the requested provider."
	msgThreadNotFound      = "The conversation could not be found."
	msgSettingNotFound     = "The setting could not be found."
	msgStreamFailed        = "An error occurred while generating the response. Please try again."
	msgInternal            = "Something went wrong. Please try again."
)

// replyError logs err and answers with the generic message for its kind.
func replyError(c echo.Context, err error) error {
	status, message := classifyError(err)
	slog.Error("request failed",
		"method", c.Request().Method,
		"uri", c.Request().RequestURI,
		"status", status,
		"error", err,
	)
	return c.JSON(status, &errorResponse{Error: message})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return http.StatusBadRequest, msgUnsupportedProvider
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusUnauthorized, msgMissingCredential
	case errors.Is(err, store.ErrThreadNotFound):
		return http.StatusNotFound, msgThreadNotFound
	case errors.Is(err, store.ErrSettingNotFound):
		return http.StatusNotFound, msgSettingNotFound
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout, msgStreamFailed
	}

	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		return http.StatusBadGateway, msgStreamFailed
	}
	return http.StatusInternalServerError, msgInternal
}

// streamErrorMessage is the message carried by an SSE error event. The stream
// is already flowing with a 200 status, so only the message survives.
func streamErrorMessage(err error) string {
	_, message := classifyError(err)
	return message
}
