package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"velora/config"
	"velora/internal/database"
	"velora/internal/router"
	"velora/pkg/cloudinary"
	"velora/pkg/llm"
	"velora/pkg/novita"
	"velora/pkg/payment"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, &cfg.Admin)
	database.SeedTokenPackages(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}
	imageProvider := novita.NewClient(cfg.Novita.BaseURL, cfg.Novita.APIKey, cfg.Novita.Model, cfg.Novita.PollInterval, cfg.Novita.PollTimeout)
	chatProvider := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)

	var paymentProvider payment.Provider
	switch strings.ToLower(cfg.Payment.Provider) {
	case "stripe":
		paymentProvider = payment.NewStripeProvider(cfg.Payment.StripeAPIKey)
	default:
		log.Printf("[payment] using stub provider (set PAYMENT_PROVIDER=stripe for real checkout)")
		paymentProvider = payment.NewStubProvider()
	}

	engine := router.Setup(cfg, db, cloud, imageProvider, chatProvider, paymentProvider)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
