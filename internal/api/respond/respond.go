// Package respond writes sdk.ApiResponse envelopes from gin handlers and maps
// domain errors to HTTP status codes.
package respond

import (
	"errors"
	"log"
	"net/http"

	"github.com/ethanbaker/smartmarket/pkg/gateway"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/ethanbaker/smartmarket/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// OK writes a 200 envelope
func OK[T any](c *gin.Context, message string, data T) {
	c.JSON(sdk.NewSuccessResponse(message, data).AsGinResponse())
}

// Created writes a 201 envelope
func Created[T any](c *gin.Context, message string, data T) {
	c.JSON(sdk.NewCreatedResponse(message, data).AsGinResponse())
}

// BadRequest writes a 400 envelope for a body or query that could not be bound
func BadRequest(c *gin.Context, message string, err error) {
	c.JSON(sdk.NewFailResponse(http.StatusBadRequest, message, errorDetail(err)).AsGinResponse())
}

// Error writes the envelope matching err. Client mistakes are reported as
// fail, everything else as error.
func Error(c *gin.Context, message string, err error) {
	code := StatusOf(err)
	if code >= http.StatusInternalServerError {
		log.Printf("[API]: %s %s: %s: %v\n", c.Request.Method, c.FullPath(), message, err)
		c.JSON(sdk.NewErrorResponse(code, message, errorDetail(err)).AsGinResponse())
		return
	}
	c.JSON(sdk.NewFailResponse(code, message, errorDetail(err)).AsGinResponse())
}

// StatusOf maps an error to its HTTP status code
func StatusOf(err error) int {
	switch {
	case errors.Is(err, gateway.ErrClassification):
		return http.StatusBadGateway
	case errors.Is(err, gateway.ErrExecution):
		return http.StatusInternalServerError
	case errors.Is(err, gateway.ErrEmptyQuestion), errors.Is(err, gateway.ErrEmptyNote):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateItem), errors.Is(err, ledger.ErrInsufficientStock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// errorDetail renders err for the envelope. Stage errors keep the question
// and generated query so the caller can retry.
func errorDetail(err error) any {
	if err == nil {
		return nil
	}

	var stageErr *gateway.StageError
	if errors.As(err, &stageErr) {
		return gin.H{
			"stage":    stageErr.Stage,
			"question": stageErr.Question,
			"query":    stageErr.Query,
			"reason":   stageErr.Err.Error(),
		}
	}
	return err.Error()
}
