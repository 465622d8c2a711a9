package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/adapters/stt"
	"github.com/Shawnzeng217/AI-Translator/adapters/translate"
	"github.com/Shawnzeng217/AI-Translator/adapters/tts"
	"github.com/Shawnzeng217/AI-Translator/domain/repositories"
	"github.com/Shawnzeng217/AI-Translator/internal/api"
	"github.com/Shawnzeng217/AI-Translator/internal/auth"
	"github.com/Shawnzeng217/AI-Translator/internal/config"
	"github.com/Shawnzeng217/AI-Translator/internal/websocket"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize backend adapters. Without credentials the server runs
	// on mocks so the bridge can be exercised locally.
	var recognizer repositories.SpeechRecognizer
	var translator repositories.Translator
	var synthesizer repositories.SpeechSynthesizer

	if cfg.UseMockServices {
		logger.Warn("Running with mock speech services")
		recognizer = stt.NewMockRecognizer(logger)
		translator = translate.NewMockTranslator(logger)
		synthesizer = tts.NewMockSynthesizer(logger)
	} else {
		recognizer = stt.NewGoogleRecognizer(logger)

		geminiTranslator, err := translate.NewGeminiTranslator(logger)
		if err != nil {
			logger.Fatal("Failed to initialize translator", zap.Error(err))
		}
		translator = geminiTranslator

		elevenLabs, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to initialize synthesizer", zap.Error(err))
		}
		synthesizer = elevenLabs
	}

	// Initialize WebSocket hub with the bridge services
	hub := websocket.NewHub(recognizer, translator, synthesizer, logger)
	go hub.Run()

	// Initialize API routes
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	api.InitRoutes(e, hub, issuer, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Bridge server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
