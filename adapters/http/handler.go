package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shovelbot/shovel/domain"
	"github.com/shovelbot/shovel/usecase"
	"github.com/shovelbot/shovel/utils/log"
	"go.uber.org/zap"
)

// OpsHandler exposes the operational HTTP surface that runs beside the
// bot: a health probe and a small status snapshot.
type OpsHandler struct {
	chatService *usecase.ChatService
	credentials domain.CredentialStore
}

func NewOpsHandler(chatService *usecase.ChatService, credentials domain.CredentialStore) *OpsHandler {
	return &OpsHandler{
		chatService: chatService,
		credentials: credentials,
	}
}

// HealthCheck endpoint
func (h *OpsHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "shovel",
	})
}

type StatusResponse struct {
	ActiveSessions  int `json:"active_sessions"`
	RegisteredUsers int `json:"registered_users"`
}

// Status reports live registry counters.
func (h *OpsHandler) Status(c echo.Context) error {
	users, err := h.credentials.Count()
	if err != nil {
		log.With(zap.Error(err)).Error("failed to count registered users")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read credential store")
	}
	return c.JSON(http.StatusOK, StatusResponse{
		ActiveSessions:  h.chatService.ActiveSessions(),
		RegisteredUsers: users,
	})
}
