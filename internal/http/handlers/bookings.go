package handlers

import (
	"net/http"
	"strings"

	"railbook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings
// Signed-in callers see their own bookings. Anonymous callers see all of them,
// optionally narrowed with ?owner=.
func (h *Handlers) ListBookings(c *gin.Context) {
	owner := middleware.GetOwner(c)
	if owner == "" {
		owner = strings.TrimSpace(c.Query("owner"))
	}
	list, err := h.Bookings.List(c.Request.Context(), owner)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

// GET /api/bookings/:ref
func (h *Handlers) GetBooking(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// POST /api/bookings/:ref/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	b, err := h.Bookings.Cancel(c.Request.Context(), middleware.GetRequestID(c), c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GET /api/bookings/:ref/ticket returns the e-ticket PDF inline.
func (h *Handlers) GetTicketPDF(c *gin.Context) {
	pdfBytes, filename, err := h.Docs.GenerateETicket(c.Request.Context(), middleware.GetRequestID(c), c.Param("ref"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
