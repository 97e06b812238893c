package main

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/MrEthical07/authkit"
	"github.com/MrEthical07/authkit/middleware"
)

type registerRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authHandler struct {
	engine *authkit.Engine
	logger *slog.Logger
}

func newAuthHandler(engine *authkit.Engine, logger *slog.Logger) *authHandler {
	return &authHandler{engine: engine, logger: logger}
}

// Register creates an account and answers 201 {"userId": ...}.
func (h *authHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	userID, err := h.engine.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"userId": userID})
}

// Login answers 200 {"token": ...}. Every credential failure is a 401 with
// the same body.
func (h *authHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.engine.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token":     res.AccessToken,
		"expiresIn": int64(res.ExpiresIn.Seconds()),
	})
}

// Me echoes the authenticated subject.
func (h *authHandler) Me(c echo.Context) error {
	res, ok := middleware.AuthResultFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"userId":    res.UserID,
		"tokenId":   res.TokenID,
		"expiresAt": res.ExpiresAt.UTC(),
	})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}
