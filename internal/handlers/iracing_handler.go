package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rockomatthews/crypto-racer/internal/auth"
	"github.com/rockomatthews/crypto-racer/internal/iracing"
	"github.com/rockomatthews/crypto-racer/internal/services"
)

// IRacingHandler proxies iRacing member data to the frontend
type IRacingHandler struct {
	raceData    iracing.RaceDataSource
	authService *services.AuthService
}

// NewIRacingHandler creates a new IRacingHandler
func NewIRacingHandler(raceData iracing.RaceDataSource, authService *services.AuthService) *IRacingHandler {
	return &IRacingHandler{
		raceData:    raceData,
		authService: authService,
	}
}

// GetProfile returns the linked iRacing member profile
// GET /api/iracing/profile
func (h *IRacingHandler) GetProfile(c *gin.Context) {
	profile, err := h.raceData.GetProfile(c.Request.Context())
	if err != nil {
		h.respondIRacingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

// GetUserRaces returns the authenticated user's recent iRacing sessions.
// The user must have an iRacing customer id linked to their account.
// GET /api/iracing/races
func (h *IRacingHandler) GetUserRaces(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if user.IRacingID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no iRacing account linked"})
		return
	}

	races, err := h.raceData.GetUserRaces(c.Request.Context(), *user.IRacingID)
	if err != nil {
		h.respondIRacingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    races,
		"count":   len(races),
	})
}

// GetSeries returns the currently active iRacing series
// GET /api/series
func (h *IRacingHandler) GetSeries(c *gin.Context) {
	series, err := h.raceData.GetActiveSeries(c.Request.Context())
	if err != nil {
		h.respondIRacingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    series,
		"count":   len(series),
	})
}

func (h *IRacingHandler) respondIRacingError(c *gin.Context, err error) {
	if errors.Is(err, iracing.ErrNotAuthenticated) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "iRacing integration not configured"})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach iRacing"})
}
