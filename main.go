package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "railbook/internal/config"
	router "railbook/internal/http"
	"railbook/internal/http/handlers"
	"railbook/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := intconfig.OpenStore(startupCtx, env)
	if err != nil {
		cancelStartup()
		log.Fatalf("failed to open %s store: %v", env.StoreDriver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("warning: failed to close store: %v", err)
		}
	}()

	catalog, err := services.LoadCatalog(startupCtx, store)
	cancelStartup()
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	inventory := services.NewInventoryService(store)
	bookings := services.NewBookingService(store, inventory)
	tokens := services.NewTokenIssuer(env.JWTSecret)
	hs := &handlers.Handlers{
		Catalog:   catalog,
		Inventory: inventory,
		Bookings:  bookings,
		Sessions:  services.NewSessionService(catalog, inventory, bookings, env.SessionTTL),
		Docs:      services.DocsService{Bookings: bookings},
		Accounts:  services.AccountService{Store: store, Tokens: tokens},
	}

	r := router.NewRouter(env, hs, tokens)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s (store=%s)", env.AppAddr, env.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown failed: %v", err)
		return
	}

	log.Println("server stopped cleanly")
}
