// Package response renders the JSON envelope used by every handler and maps
// the error taxonomy to HTTP statuses.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
)

// Success writes a 200 envelope with the given data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 envelope with the given data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a 200 envelope with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 envelope with a bare message.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

// Error maps a taxonomy error to its HTTP status. Anything outside the
// taxonomy is treated as an internal error without leaking detail.
func Error(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		details := gin.H{"code": validationErr.Code}
		if len(validationErr.Fields) > 0 {
			details["fields"] = validationErr.Fields
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message, details)
		return
	}

	var unavailableErr *apperrors.UnavailableError
	if errors.As(err, &unavailableErr) {
		writeError(c, http.StatusConflict, "UNAVAILABLE", unavailableErr.Message, nil)
		return
	}

	var conflictErr *apperrors.ConflictError
	if errors.As(err, &conflictErr) {
		writeError(c, http.StatusConflict, "CONFLICT", conflictErr.Message, nil)
		return
	}

	var authErr *apperrors.AuthorizationError
	if errors.As(err, &authErr) {
		writeError(c, http.StatusForbidden, "FORBIDDEN", authErr.Message, nil)
		return
	}

	var notFoundErr *apperrors.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error(), nil)
		return
	}

	writeError(c, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func writeError(c *gin.Context, status int, code, message string, details gin.H) {
	body := gin.H{"code": code, "message": message}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{"success": false, "error": body})
}
