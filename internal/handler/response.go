package handler

import (
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 成功は {success, message, data}、失敗は {success:false, message}
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Success: false, Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Message: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Message: msg})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxUserIDKey).(int64)
	return v, ok && v > 0
}

func getUserRoleFromContext(c echo.Context) (string, bool) {
	v, ok := c.Get(middleware.CtxUserRoleKey).(string)
	return v, ok && v != ""
}
