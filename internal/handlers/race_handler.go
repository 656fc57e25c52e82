package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/services"
)

// RaceHandler handles race endpoints
type RaceHandler struct {
	raceService *services.RaceService
}

// NewRaceHandler creates a new RaceHandler
func NewRaceHandler(raceService *services.RaceService) *RaceHandler {
	return &RaceHandler{raceService: raceService}
}

// GetRaces returns all races with their participants
// GET /api/races
func (h *RaceHandler) GetRaces(c *gin.Context) {
	races, err := h.raceService.ListRaces(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch races"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    races,
		"count":   len(races),
	})
}

// GetRaceByID returns a specific race with its participants
// GET /api/races/:id
func (h *RaceHandler) GetRaceByID(c *gin.Context) {
	raceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid race id"})
		return
	}

	race, err := h.raceService.GetRace(c.Request.Context(), raceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Race not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch race"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    race,
	})
}

// CreateRace creates a new race with its driver roster
// POST /api/races
func (h *RaceHandler) CreateRace(c *gin.Context) {
	var req models.CreateRaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	race, err := h.raceService.CreateRace(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create race"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    race,
	})
}
