package handlers

import (
	"net/http"

	"railbook/internal/domain/models"
	"railbook/internal/http/middleware"
	"railbook/internal/services"
	"railbook/internal/utils"

	"github.com/gin-gonic/gin"
)

// sessionView lists the selection in seat order rather than click order.
func sessionView(sess models.Session) models.Session {
	sess.Selected = sess.SortedSeats()
	return sess
}

type startSessionRequest struct {
	TrainID string `json:"train_id" binding:"required"`
	Date    string `json:"date"`
	Class   string `json:"class"`
	Pax     int    `json:"pax"`
}

// POST /api/sessions
func (h *Handlers) StartSession(c *gin.Context) {
	var req startSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.Sessions.StartSession(c.Request.Context(), services.StartSessionInput{
		RequestID: middleware.GetRequestID(c),
		Owner:     middleware.GetOwner(c),
		TrainID:   req.TrainID,
		Date:      req.Date,
		Class:     req.Class,
		Pax:       req.Pax,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sessionView(sess)})
}

// GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// POST /api/sessions/:id/seats/:seat
func (h *Handlers) SelectSeat(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.SelectSeat(c.Request.Context(), c.Param("id"), seat)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// DELETE /api/sessions/:id/seats/:seat
func (h *Handlers) DeselectSeat(c *gin.Context) {
	seat, ok := seatParam(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.DeselectSeat(c.Request.Context(), c.Param("id"), seat)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// POST /api/sessions/:id/quote
func (h *Handlers) QuoteSession(c *gin.Context) {
	sess, err := h.Sessions.Quote(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": sessionView(sess),
		"fare":    sess.Quote,
		"label":   utils.FormatPKR(sess.Quote.Total),
	})
}

type confirmRequest struct {
	Passenger models.Passenger    `json:"passenger"`
	Payment   models.PaymentInput `json:"payment"`
}

// POST /api/sessions/:id/confirm
func (h *Handlers) ConfirmSession(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Sessions.Confirm(c.Request.Context(), c.Param("id"), services.ConfirmInput{
		RequestID: middleware.GetRequestID(c),
		Passenger: req.Passenger,
		Payment:   req.Payment,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// DELETE /api/sessions/:id
func (h *Handlers) DiscardSession(c *gin.Context) {
	if err := h.Sessions.Discard(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
