package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rockomatthews/crypto-racer/internal/metrics"
	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"
)

// fakeSubmitter stands in for the Solana client's house-transfer call
type fakeSubmitter struct {
	calls []fakeTransfer
	err   error
}

type fakeTransfer struct {
	destination string
	amount      decimal.Decimal
	memo        []byte
}

func (f *fakeSubmitter) SubmitHouseTransfer(ctx context.Context, destination string, amount decimal.Decimal, memo []byte) (string, error) {
	f.calls = append(f.calls, fakeTransfer{destination: destination, amount: amount, memo: memo})
	if f.err != nil {
		return "", f.err
	}
	return "payout-sig-1", nil
}

func setupWonBet(t *testing.T) (*repository.Repository, *models.Bet, func() models.Bet) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)

	user := createTestUser(t, db, "winner-wallet")
	race := createTestRace(t, db, 9001, models.RaceStatusCompleted, time.Now().Add(-time.Hour), 501)
	bet := createTestBet(t, db, user, race, &race.Participants[0], models.BetStatusWon)

	reload := func() models.Bet {
		var got models.Bet
		if err := db.First(&got, "id = ?", bet.ID).Error; err != nil {
			t.Fatalf("failed to reload bet: %v", err)
		}
		return got
	}
	return repo, bet, reload
}

func TestProcessPayoutPaysStakeTimesOdds(t *testing.T) {
	repo, bet, reload := setupWonBet(t)
	submitter := &fakeSubmitter{}
	svc := NewPayoutService(repo, submitter)

	if err := svc.ProcessPayout(context.Background(), bet, "winner-wallet"); err != nil {
		t.Fatalf("ProcessPayout failed: %v", err)
	}

	if len(submitter.calls) != 1 {
		t.Fatalf("expected one transfer, got %d", len(submitter.calls))
	}

	// 0.5 SOL at 2.5 odds pays 1.25 SOL
	want := decimal.NewFromFloat(1.25)
	if !submitter.calls[0].amount.Equal(want) {
		t.Errorf("payout amount %s, want %s", submitter.calls[0].amount, want)
	}
	if submitter.calls[0].destination != "winner-wallet" {
		t.Errorf("destination %s, want winner-wallet", submitter.calls[0].destination)
	}

	var memo map[string]interface{}
	if err := json.Unmarshal(submitter.calls[0].memo, &memo); err != nil {
		t.Fatalf("memo is not valid JSON: %v", err)
	}
	if memo["type"] != "payout" {
		t.Errorf("memo type %v, want payout", memo["type"])
	}
	if memo["betId"] != bet.ID.String() {
		t.Errorf("memo betId %v, want %s", memo["betId"], bet.ID)
	}

	got := reload()
	if got.Status != models.BetStatusPaidOut {
		t.Errorf("expected bet PAID_OUT, got %s", got.Status)
	}
	if got.PayoutTxSignature == nil || *got.PayoutTxSignature != "payout-sig-1" {
		t.Errorf("expected payout signature recorded, got %v", got.PayoutTxSignature)
	}
}

func TestProcessPayoutSkipsAlreadyClaimed(t *testing.T) {
	repo, bet, reload := setupWonBet(t)
	submitter := &fakeSubmitter{}
	svc := NewPayoutService(repo, submitter)

	claimed, err := repo.ClaimBetPayout(context.Background(), bet.ID)
	if err != nil || !claimed {
		t.Fatalf("pre-claim failed: claimed=%v err=%v", claimed, err)
	}

	if err := svc.ProcessPayout(context.Background(), bet, "winner-wallet"); err != nil {
		t.Fatalf("ProcessPayout failed: %v", err)
	}

	if len(submitter.calls) != 0 {
		t.Errorf("expected no transfer for an already-claimed bet, got %d", len(submitter.calls))
	}

	got := reload()
	if got.Status != models.BetStatusWon {
		t.Errorf("expected bet left WON, got %s", got.Status)
	}
}

func TestProcessPayoutFailureReleasesClaim(t *testing.T) {
	repo, bet, reload := setupWonBet(t)
	submitter := &fakeSubmitter{err: errors.New("rpc unavailable")}
	svc := NewPayoutService(repo, submitter)

	err := svc.ProcessPayout(context.Background(), bet, "winner-wallet")
	if err == nil {
		t.Fatal("expected an error when the transfer fails")
	}

	got := reload()
	if got.Status != models.BetStatusWon {
		t.Errorf("expected bet left WON for retry, got %s", got.Status)
	}
	if got.PayoutClaimed {
		t.Error("expected claim released after a failed transfer")
	}
	if got.PayoutTxSignature != nil {
		t.Errorf("expected no payout signature, got %v", got.PayoutTxSignature)
	}

	// The next pass succeeds
	submitter.err = nil
	if err := svc.ProcessPayout(context.Background(), bet, "winner-wallet"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	got = reload()
	if got.Status != models.BetStatusPaidOut {
		t.Errorf("expected bet PAID_OUT after retry, got %s", got.Status)
	}
}

// sabotagingSubmitter succeeds and then breaks the bets table, so the
// paid-out bookkeeping that follows the transfer fails
type sabotagingSubmitter struct {
	db *gorm.DB
}

func (s *sabotagingSubmitter) SubmitHouseTransfer(ctx context.Context, destination string, amount decimal.Decimal, memo []byte) (string, error) {
	s.db.Exec("DROP TABLE bets")
	return "payout-sig-lost", nil
}

func TestProcessPayoutCountsUnrecordedTransfers(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)

	user := createTestUser(t, db, "winner-wallet")
	race := createTestRace(t, db, 9200, models.RaceStatusCompleted, time.Now().Add(-time.Hour), 501)
	bet := createTestBet(t, db, user, race, &race.Participants[0], models.BetStatusWon)

	svc := NewPayoutService(repo, &sabotagingSubmitter{db: db})

	before := testutil.ToFloat64(metrics.PayoutsUnrecorded)

	err := svc.ProcessPayout(context.Background(), bet, "winner-wallet")
	if err == nil {
		t.Fatal("expected an error when the transfer cannot be recorded")
	}

	if got := testutil.ToFloat64(metrics.PayoutsUnrecorded) - before; got != 1 {
		t.Errorf("expected one unrecorded payout counted, got %v", got)
	}
}

func TestProcessPayoutRefusesUnwonBet(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	submitter := &fakeSubmitter{}
	svc := NewPayoutService(repo, submitter)

	user := createTestUser(t, db, "wallet-a")
	race := createTestRace(t, db, 9100, models.RaceStatusCompleted, time.Now().Add(-time.Hour), 501)
	bet := createTestBet(t, db, user, race, &race.Participants[0], models.BetStatusConfirmed)

	// The claim is conditional on WON, so a CONFIRMED bet never pays
	if err := svc.ProcessPayout(context.Background(), bet, "wallet-a"); err != nil {
		t.Fatalf("ProcessPayout failed: %v", err)
	}
	if len(submitter.calls) != 0 {
		t.Errorf("expected no transfer for a CONFIRMED bet, got %d", len(submitter.calls))
	}
}
