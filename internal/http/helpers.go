package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// GetUserRole extracts the authenticated user's role from the Gin context.
func GetUserRole(c *gin.Context) entities.UserRole {
	return auth.GetUserRole(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses:
// missing entities are 404, illegal transitions and resource conflicts are
// 409, everything else is an internal error.
func respondDomainError(c *gin.Context, err error, context string) {
	var invalidState *entities.InvalidStateError

	switch {
	case errors.Is(err, entities.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: context + " not found"})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: invalidState.Error()})
	case errors.Is(err, entities.ErrNoCopiesAvailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no copies of this book are available"})
	case errors.Is(err, entities.ErrNoActiveFeeStructure):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no active fee structure for this fee type"})
	case errors.Is(err, entities.ErrBookingConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "the requested slot is already booked"})
	case errors.Is(err, entities.ErrForbidden):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "insufficient permissions"})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Returns the parsed ID or responds with a 400 error and
// returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseOptionalUintQuery parses an optional unsigned integer query parameter.
// A missing parameter yields 0 with no error.
func parseOptionalUintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
