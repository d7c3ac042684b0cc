package handlers

import (
	"net/http"
	"strconv"

	"railbook/internal/domain"
	"railbook/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers holds the services the HTTP surface talks to.
type Handlers struct {
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
	Bookings  *services.BookingService
	Sessions  *services.SessionService
	Docs      services.DocsService
	Accounts  services.AccountService
}

// bindJSON ensures body is present and parsable.
func bindJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is required", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", gin.H{"reason": err.Error()})
		return false
	}
	return true
}

// seatParam parses :seat. Non-numbers are reported as an invalid seat.
func seatParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "seat", Msg: "seat must be a number", Err: domain.ErrInvalidSeat})
		return 0, false
	}
	return n, true
}
