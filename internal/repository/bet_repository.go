package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rockomatthews/crypto-racer/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrDuplicateTxSignature is returned when a stake transfer signature has
// already been used to confirm another bet
var ErrDuplicateTxSignature = errors.New("transaction signature already used")

// CreateBet creates a new bet
func (r *Repository) CreateBet(ctx context.Context, bet *models.Bet) error {
	err := r.db.WithContext(ctx).Create(bet).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateTxSignature
	}
	return err
}

// isUniqueViolation reports whether err is a unique-constraint failure
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// GetBetByID retrieves a bet with its relations
func (r *Repository) GetBetByID(ctx context.Context, betID uuid.UUID) (*models.Bet, error) {
	var bet models.Bet
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Race").
		Preload("Driver").
		Where("id = ?", betID).
		First(&bet).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// ListBets retrieves all bets, newest first
func (r *Repository) ListBets(ctx context.Context, limit, offset int) ([]*models.Bet, error) {
	var bets []*models.Bet
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Race").
		Preload("Driver").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}

// ListUserBets retrieves a user's bets, newest first
func (r *Repository) ListUserBets(ctx context.Context, userID uint, limit, offset int) ([]*models.Bet, error) {
	var bets []*models.Bet
	err := r.db.WithContext(ctx).
		Preload("Race").
		Preload("Driver").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}

// GetBetsForRace retrieves every bet on a race with bettor and driver loaded
func (r *Repository) GetBetsForRace(ctx context.Context, raceID uuid.UUID) ([]*models.Bet, error) {
	var bets []*models.Bet
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Driver").
		Where("race_id = ?", raceID).
		Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}

// TransitionBetStatus moves a bet from one status to another. The update is
// conditional on the current status, so concurrent settlement runs produce
// at most one transition; the return value reports whether this caller won.
func (r *Repository) TransitionBetStatus(
	ctx context.Context,
	betID uuid.UUID,
	from, to models.BetStatus,
) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND status = ?", betID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"settled_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClaimBetPayout atomically claims a WON bet for payout. Returns false when
// the payout was already claimed by another run.
func (r *Repository) ClaimBetPayout(ctx context.Context, betID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND status = ? AND payout_claimed = ?", betID, models.BetStatusWon, false).
		Update("payout_claimed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseBetPayout gives a failed payout attempt back for retry
func (r *Repository) ReleaseBetPayout(ctx context.Context, betID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND status = ?", betID, models.BetStatusWon).
		Update("payout_claimed", false).Error
}

// MarkBetPaidOut records the payout signature and moves a claimed WON bet
// to its terminal PAID_OUT status
func (r *Repository) MarkBetPaidOut(ctx context.Context, betID uuid.UUID, signature string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND status = ? AND payout_claimed = ?", betID, models.BetStatusWon, true).
		Updates(map[string]interface{}{
			"status":              models.BetStatusPaidOut,
			"payout_tx_signature": signature,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
