package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"airdrop-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

// Created wraps a response that produced a new resource or state change.
func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func Forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: msg})
}

func InternalError(c echo.Context, err error) error {
	slog.Error("internal error", slog.String("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// DomainError maps a domain error onto the HTTP surface. Functional errors
// carry their code and message to the client; technical errors are logged
// and reported as an opaque server failure, except a pending transfer which
// is a retryable conflict.
func DomainError(c echo.Context, err error) error {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return InternalError(c, err)
	}

	switch {
	case derr.Code == domain.CodeInvalidEvmAddress:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: derr.Message, Code: string(derr.Code)})
	case derr.Code == domain.CodeTransferPending:
		return c.JSON(http.StatusConflict, errorResponse{Error: derr.Message, Code: string(derr.Code)})
	case derr.Kind == domain.ErrorKindFunctional:
		return c.JSON(http.StatusForbidden, errorResponse{Error: derr.Message, Code: string(derr.Code)})
	default:
		return InternalError(c, err)
	}
}
