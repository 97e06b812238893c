package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MrEthical07/authkit"
)

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// newErrorHandler maps engine errors onto status codes. Credential and token
// failures share one generic body so responses do not reveal which check
// failed.
func newErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("path", c.Request().URL.Path),
				slog.String("method", c.Request().Method),
				slog.Any("error", err),
			)
		}
		if werr := c.JSON(status, body); werr != nil {
			logger.Warn("write error response", slog.Any("error", werr))
		}
	}
}

func classify(err error) (int, errorBody) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, strings.ToLower(fe.Field()[:1])+fe.Field()[1:]+": "+fe.Tag())
		}
		return http.StatusBadRequest, errorBody{Error: "validation failed", Details: details}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, errorBody{Error: msg}
	}

	switch {
	case errors.Is(err, authkit.ErrInvalidCredentials), errors.Is(err, authkit.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized"}
	case errors.Is(err, authkit.ErrAccountExists):
		return http.StatusConflict, errorBody{Error: "account already exists"}
	case errors.Is(err, authkit.ErrInvalidIdentifier):
		return http.StatusBadRequest, errorBody{Error: "invalid email"}
	case errors.Is(err, authkit.ErrPasswordPolicy):
		return http.StatusBadRequest, errorBody{Error: "password does not meet policy"}
	case errors.Is(err, authkit.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorBody{Error: "service unavailable"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}
