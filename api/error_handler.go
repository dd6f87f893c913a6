package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-200 answer.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func httpErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if c.Response().Committed {
		return
	}
	_ = c.JSON(code, ErrorResponse{Message: msg, Code: code})
}
