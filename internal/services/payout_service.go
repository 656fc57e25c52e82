package services

import (
	"context"
	"fmt"
	"log"

	"github.com/rockomatthews/crypto-racer/internal/blockchain"
	"github.com/rockomatthews/crypto-racer/internal/metrics"
	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"

	"github.com/shopspring/decimal"
)

// PayoutSubmitter is the slice of the Solana client the payout flow needs
type PayoutSubmitter interface {
	SubmitHouseTransfer(ctx context.Context, destination string, amount decimal.Decimal, memo []byte) (string, error)
}

// PayoutService pays winning bets from the house wallet
type PayoutService struct {
	repo      *repository.Repository
	submitter PayoutSubmitter
}

func NewPayoutService(repo *repository.Repository, submitter PayoutSubmitter) *PayoutService {
	return &PayoutService{
		repo:      repo,
		submitter: submitter,
	}
}

// ProcessPayout pays a WON bet to the destination wallet. The bet is
// claimed with a conditional update first, so two runs racing on the same
// bet produce exactly one transfer. A failed submission releases the claim
// and leaves the bet WON for the next settlement pass.
func (ps *PayoutService) ProcessPayout(ctx context.Context, bet *models.Bet, destination string) error {
	payout := bet.Payout()

	claimed, err := ps.repo.ClaimBetPayout(ctx, bet.ID)
	if err != nil {
		return fmt.Errorf("failed to claim payout for bet %s: %w", bet.ID, err)
	}
	if !claimed {
		log.Printf("[Payout] Bet %s already claimed by another run, skipping", bet.ID)
		return nil
	}

	memo := blockchain.TransferMemo{
		Type:     "payout",
		BetID:    bet.ID.String(),
		RaceID:   bet.RaceID.String(),
		DriverID: bet.DriverID.String(),
	}

	log.Printf("[Payout] Paying bet %s: stake=%s odds=%s payout=%s SOL to %s",
		bet.ID, bet.Amount, bet.Odds, payout, destination)

	signature, err := ps.submitter.SubmitHouseTransfer(ctx, destination, payout, memo.Encode())
	if err != nil {
		metrics.PayoutsFailed.Inc()
		if relErr := ps.repo.ReleaseBetPayout(ctx, bet.ID); relErr != nil {
			log.Printf("[Payout] Warning: failed to release claim on bet %s: %v", bet.ID, relErr)
		}
		return fmt.Errorf("payout transfer failed for bet %s: %w", bet.ID, err)
	}

	marked, err := ps.repo.MarkBetPaidOut(ctx, bet.ID, signature)
	if err != nil {
		// The transfer is on-chain; the claim stays held so the bet is
		// not paid twice, and the signature is recoverable from the memo.
		metrics.PayoutsUnrecorded.Inc()
		return fmt.Errorf("transfer %s confirmed but bet %s not marked paid: %w", signature, bet.ID, err)
	}
	if !marked {
		log.Printf("[Payout] Warning: bet %s was not in a payable state after transfer %s", bet.ID, signature)
		return nil
	}

	metrics.PayoutsSubmitted.Inc()
	log.Printf("[Payout] Bet %s paid out: %s SOL, signature %s", bet.ID, payout, signature)

	return nil
}
