package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shawnzeng217/AI-Translator/domain/entities"
	"github.com/Shawnzeng217/AI-Translator/internal/auth"
	"github.com/Shawnzeng217/AI-Translator/internal/websocket"
)

// InitRoutes initializes all API routes.
func InitRoutes(e *echo.Echo, hub *websocket.Hub, issuer *auth.TokenIssuer, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "ai-translator",
		})
	})

	v1 := e.Group("/api/v1")

	// Language catalog for the picker UI.
	v1.GET("/languages", func(c echo.Context) error {
		return c.JSON(http.StatusOK, entities.Languages())
	})

	// Client token issue.
	v1.POST("/token", func(c echo.Context) error {
		return issueToken(c, issuer, logger)
	})

	// WebSocket endpoint with JWT validation.
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, issuer, logger)
	})
}

func issueToken(c echo.Context, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	token, err := issuer.Generate(clientID)
	if err != nil {
		logger.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token, ClientID: clientID})
}

func websocketWithAuth(hub *websocket.Hub, c echo.Context, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Token query parameter is required",
		})
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		logger.Warn("WebSocket authentication failed", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid or expired token",
		})
	}

	return websocket.HandleWebSocketWithAuth(hub, c, claims.ClientID, logger)
}
