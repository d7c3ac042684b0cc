package api

import (
	"log"
	stdhttp "net/http"

	intconfig "railbook/internal/config"
	h "railbook/internal/http/handlers"
	"railbook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the booking API under /api.
func NewRouter(env intconfig.Env, hs *h.Handlers, tokens middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins), middleware.AuthOptional(tokens))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/cities", hs.Cities)

		// Catalog and seat maps
		trains := api.Group("/trains")
		trains.GET("", hs.SearchTrains)
		trains.GET("/:id", hs.GetTrain)
		trains.GET("/:id/seats", hs.GetSeatMap)

		// Booking sessions
		sessions := api.Group("/sessions")
		sessions.POST("", hs.StartSession)
		sessions.GET("/:id", hs.GetSession)
		sessions.DELETE("/:id", hs.DiscardSession)
		sessions.POST("/:id/seats/:seat", hs.SelectSeat)
		sessions.DELETE("/:id/seats/:seat", hs.DeselectSeat)
		sessions.POST("/:id/quote", hs.QuoteSession)
		sessions.POST("/:id/confirm", hs.ConfirmSession)

		// Ledger
		bookings := api.Group("/bookings")
		bookings.GET("", hs.ListBookings)
		bookings.GET("/:ref", hs.GetBooking)
		bookings.POST("/:ref/cancel", hs.CancelBooking)
		bookings.GET("/:ref/ticket", hs.GetTicketPDF)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hs.Register)
		auth.POST("/login", hs.Login)
		auth.GET("/me", middleware.RequireOwner(), hs.Me)
	}

	return r
}
