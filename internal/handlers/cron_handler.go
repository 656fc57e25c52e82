package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rockomatthews/crypto-racer/internal/services"
)

// CronHandler exposes the settlement pass to an external scheduler
type CronHandler struct {
	settlement *services.SettlementService
	secret     string
}

// NewCronHandler creates a new CronHandler
func NewCronHandler(settlement *services.SettlementService, secret string) *CronHandler {
	return &CronHandler{
		settlement: settlement,
		secret:     secret,
	}
}

// UpdateRaces runs one settlement pass. Protected by a shared bearer
// secret rather than a user JWT so hosted schedulers can call it.
// GET /cron/update-races
func (h *CronHandler) UpdateRaces(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.settlement.UpdateRaceStatuses(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update races"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Race statuses updated",
	})
}
