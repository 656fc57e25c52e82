package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rockomatthews/crypto-racer/internal/auth"
	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"
	"github.com/rockomatthews/crypto-racer/internal/services"
)

// BetHandler handles bet endpoints
type BetHandler struct {
	betService *services.BetService
}

// NewBetHandler creates a new BetHandler
func NewBetHandler(betService *services.BetService) *BetHandler {
	return &BetHandler{betService: betService}
}

// GetBets returns the authenticated user's bets, or all bets when the
// "all" query flag is set
// GET /api/bets
func (h *BetHandler) GetBets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var (
		bets []*models.Bet
		err  error
	)

	if c.Query("all") == "true" {
		bets, err = h.betService.ListBets(c.Request.Context(), limit, offset)
	} else {
		userID, exists := auth.GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		bets, err = h.betService.ListUserBets(c.Request.Context(), userID, limit, offset)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bets,
		"count":   len(bets),
	})
}

// CreateBet records a pending bet before any stake transfer exists
// POST /api/bets
func (h *BetHandler) CreateBet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.CreateBet(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondBetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    bet,
	})
}

// CreateBetTransaction builds the unsigned stake transfer for the user's
// wallet to sign
// POST /api/bets/create-transaction
func (h *BetHandler) CreateBetTransaction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBetTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.betService.CreateBetTransaction(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondBetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// ConfirmBetTransaction submits the signed stake transfer and records the
// bet once it lands on-chain
// POST /api/bets/confirm-transaction
func (h *BetHandler) ConfirmBetTransaction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.ConfirmBetTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.ConfirmBetTransaction(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTxSignature) {
			c.JSON(http.StatusConflict, gin.H{"error": "transaction already used for a bet"})
			return
		}
		h.respondBetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    bet,
	})
}

// respondBetError maps bet validation failures to 400 and everything else
// to 500
func (h *BetHandler) respondBetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRaceClosed),
		errors.Is(err, services.ErrDriverNotInRace),
		errors.Is(err, services.ErrInvalidStake):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process bet"})
	}
}
