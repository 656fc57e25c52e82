package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rockomatthews/crypto-racer/internal/iracing"
	"github.com/rockomatthews/crypto-racer/internal/metrics"
	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"

	"github.com/google/uuid"
)

// PayoutProcessor resolves winning bets into on-chain transfers
type PayoutProcessor interface {
	ProcessPayout(ctx context.Context, bet *models.Bet, destination string) error
}

// SettlementService converts race completion into bet resolution and
// payout. It is driven by the cron endpoint and the background settler job.
type SettlementService struct {
	repo     *repository.Repository
	raceData iracing.RaceDataSource
	payouts  PayoutProcessor
	now      func() time.Time
}

func NewSettlementService(
	repo *repository.Repository,
	raceData iracing.RaceDataSource,
	payouts PayoutProcessor,
) *SettlementService {
	return &SettlementService{
		repo:     repo,
		raceData: raceData,
		payouts:  payouts,
		now:      time.Now,
	}
}

// UpdateRaceStatuses runs one settlement pass: fetch results for every race
// past its scheduled start, and retry bet settlement on completed races
// that still carry unsettled bets. A failure on one race never aborts the
// others; everything failed here is retried on the next pass.
func (s *SettlementService) UpdateRaceStatuses(ctx context.Context) error {
	races, err := s.repo.GetRacesDueForResults(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to query due races: %w", err)
	}

	handled := make(map[uuid.UUID]bool, len(races))
	for _, race := range races {
		handled[race.ID] = true
		if err := s.ProcessRaceResults(ctx, race); err != nil {
			metrics.SettlementErrors.Inc()
			log.Printf("[Settlement] Error processing race %s (subsession %d): %v",
				race.ID, race.SubsessionID, err)
		}
	}

	// Completed races are excluded from result polling, so settlement
	// failures are retried here independently of result fetching.
	pending, err := s.repo.GetCompletedRacesWithUnsettledBets(ctx)
	if err != nil {
		return fmt.Errorf("failed to query unsettled races: %w", err)
	}

	for _, race := range pending {
		// Races settled moments ago in the result loop are not retried
		// within the same pass; a payout that failed there waits for the
		// next poll.
		if handled[race.ID] {
			continue
		}
		if err := s.settleRaceBets(ctx, race.ID); err != nil {
			metrics.SettlementErrors.Inc()
			log.Printf("[Settlement] Error settling bets for race %s: %v", race.ID, err)
		}
	}

	return nil
}

// ProcessRaceResults fetches the result sheet for one race, marks the race
// completed, records driver finish positions, and settles the race's bets.
// Missing results are a no-op; the race stays eligible for the next pass.
func (s *SettlementService) ProcessRaceResults(ctx context.Context, race *models.Race) error {
	results, err := s.raceData.GetRaceResults(ctx, race.SubsessionID)
	if err != nil {
		return fmt.Errorf("result fetch failed: %w", err)
	}

	if results == nil {
		log.Printf("[Settlement] No results available yet for race %s (subsession %d)",
			race.ID, race.SubsessionID)
		return nil
	}

	endTime := results.SessionEndTime
	if endTime.IsZero() {
		endTime = s.now()
	}

	if err := s.repo.CompleteRace(ctx, race.ID, endTime); err != nil {
		return fmt.Errorf("failed to complete race: %w", err)
	}
	metrics.RacesCompleted.Inc()
	log.Printf("[Settlement] Race %s (subsession %d) completed at %s",
		race.ID, race.SubsessionID, endTime.Format(time.RFC3339))

	for _, row := range results.Results {
		driver, err := s.repo.GetDriverByIRacingID(ctx, race.ID, row.CustID)
		if err != nil {
			// A result row for a driver we never registered. Kept loud:
			// bets can only reference known drivers, but the row is lost.
			log.Printf("[Settlement] Warning: unmatched result row for cust_id %d in race %s",
				row.CustID, race.ID)
			continue
		}

		status := driverStatusFromResult(row)
		if err := s.repo.UpdateDriverResult(ctx, driver.ID, row.FinishPosition, status); err != nil {
			return fmt.Errorf("failed to update driver %s: %w", driver.ID, err)
		}
	}

	return s.settleRaceBets(ctx, race.ID)
}

// driverStatusFromResult derives the driver's final status from a result
// row: zero completed laps is a disqualification, the negative finish
// position sentinel a DNF, anything else a finish.
func driverStatusFromResult(row iracing.DriverResult) models.DriverStatus {
	if row.LapsCompleted == 0 {
		return models.DriverStatusDSQ
	}
	if row.FinishPosition < 0 {
		return models.DriverStatusDNF
	}
	return models.DriverStatusFinished
}

// settleRaceBets resolves every settleable bet on a race
func (s *SettlementService) settleRaceBets(ctx context.Context, raceID uuid.UUID) error {
	race, err := s.repo.GetRaceByID(ctx, raceID)
	if err != nil {
		return fmt.Errorf("failed to load race: %w", err)
	}

	winningPos, ok := winningPosition(race.Participants)
	if !ok {
		log.Printf("[Settlement] Race %s has no finished drivers yet, holding bets", raceID)
		return nil
	}

	bets, err := s.repo.GetBetsForRace(ctx, raceID)
	if err != nil {
		return fmt.Errorf("failed to load bets: %w", err)
	}

	for _, bet := range bets {
		if err := s.settleBet(ctx, bet, winningPos); err != nil {
			log.Printf("[Settlement] Error settling bet %s: %v", bet.ID, err)
		}
	}

	return nil
}

// winningPosition finds the numerically lowest finish position among the
// drivers that actually finished. The result feed's indexing convention
// (zero- or one-based) does not matter as long as it is consistent within
// one race.
func winningPosition(drivers []models.Driver) (int, bool) {
	best := 0
	found := false

	for _, d := range drivers {
		if d.Status != models.DriverStatusFinished || d.FinishPosition == nil || *d.FinishPosition < 0 {
			continue
		}
		if !found || *d.FinishPosition < best {
			best = *d.FinishPosition
			found = true
		}
	}

	return best, found
}

// settleBet resolves a single bet. CONFIRMED bets transition to WON or
// LOST exactly once via a conditional update; WON bets with an unclaimed
// payout retry the transfer. Terminal and unconfirmed bets are untouched.
func (s *SettlementService) settleBet(ctx context.Context, bet *models.Bet, winningPos int) error {
	switch bet.Status {
	case models.BetStatusConfirmed:
		driver := bet.Driver
		if driver == nil {
			return fmt.Errorf("bet %s has no driver loaded", bet.ID)
		}

		if driver.FinishPosition == nil {
			// Result row never arrived for this driver; keep polling.
			log.Printf("[Settlement] Driver %s has no finish position yet, bet %s held",
				driver.ID, bet.ID)
			return nil
		}

		won := driver.Status == models.DriverStatusFinished && *driver.FinishPosition == winningPos

		to := models.BetStatusLost
		result := "lost"
		if won {
			to = models.BetStatusWon
			result = "won"
		}

		transitioned, err := s.repo.TransitionBetStatus(ctx, bet.ID, models.BetStatusConfirmed, to)
		if err != nil {
			return fmt.Errorf("failed to transition bet: %w", err)
		}
		if !transitioned {
			// Another run settled this bet first.
			return nil
		}

		metrics.BetsSettled.WithLabelValues(result).Inc()
		log.Printf("[Settlement] Bet %s %s (driver %s finished P%d, winning position P%d)",
			bet.ID, result, driver.ID, *driver.FinishPosition, winningPos)

		if won {
			return s.payWinner(ctx, bet)
		}
		return nil

	case models.BetStatusWon:
		if bet.PayoutClaimed {
			return nil
		}
		return s.payWinner(ctx, bet)

	default:
		// PENDING bets have no confirmed stake; LOST and PAID_OUT are
		// terminal. Nothing to do.
		return nil
	}
}

// payWinner triggers the payout when the bettor has a wallet on file.
// Without one the bet stays WON and is retried every pass, so a wallet
// added later still gets paid.
func (s *SettlementService) payWinner(ctx context.Context, bet *models.Bet) error {
	if bet.User == nil || bet.User.WalletAddress == nil || *bet.User.WalletAddress == "" {
		log.Printf("[Settlement] Bet %s won but user %d has no wallet address, payout deferred",
			bet.ID, bet.UserID)
		return nil
	}

	return s.payouts.ProcessPayout(ctx, bet, *bet.User.WalletAddress)
}
