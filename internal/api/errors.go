package api

import (
	"errors"
	"net/http"

	"comanda/internal/restaurant"

	"github.com/gin-gonic/gin"
)

type errorKind struct {
	err    error
	code   string
	status int
}

var errorKinds = []errorKind{
	{restaurant.ErrDuplicateName, "duplicate_name", http.StatusConflict},
	{restaurant.ErrNotFound, "not_found", http.StatusNotFound},
	{restaurant.ErrTableOccupied, "table_occupied", http.StatusConflict},
	{restaurant.ErrEmptyOrder, "empty_order", http.StatusUnprocessableEntity},
	{restaurant.ErrInvalidState, "invalid_state", http.StatusConflict},
	{restaurant.ErrTerminalState, "terminal_state", http.StatusConflict},
	{restaurant.ErrRange, "out_of_range", http.StatusUnprocessableEntity},
}

// respondError maps a restaurant error to its status and code
func respondError(c *gin.Context, err error) {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.err) {
			c.JSON(kind.status, gin.H{"error": kind.code, "detail": err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "detail": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
}
