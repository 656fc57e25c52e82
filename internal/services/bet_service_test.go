package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"
)

// fakeGateway fakes the Solana transfer surface of the bet flow
type fakeGateway struct {
	builtTx      string
	submitted    []string
	submitResult string
	submitErr    error
}

func (f *fakeGateway) BuildTransferBase64(ctx context.Context, from, to string, amount decimal.Decimal, memo []byte) (string, error) {
	return f.builtTx, nil
}

func (f *fakeGateway) SubmitSignedTransaction(ctx context.Context, rawBase64 string) (string, error) {
	f.submitted = append(f.submitted, rawBase64)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeGateway) ValidateWalletAddress(address string) bool {
	return address != ""
}

func TestCreateBetRejectsClosedRace(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewBetService(repo, &fakeGateway{}, "house-wallet")

	user := createTestUser(t, db, "wallet-a")
	race := createTestRace(t, db, 11001, models.RaceStatusCompleted, time.Now().Add(-time.Hour), 501)

	_, err := svc.CreateBet(context.Background(), user.ID, &models.CreateBetRequest{
		RaceID:   race.ID.String(),
		DriverID: race.Participants[0].ID.String(),
		Amount:   decimal.NewFromFloat(0.5),
		Odds:     decimal.NewFromFloat(2.5),
	})
	if !errors.Is(err, ErrRaceClosed) {
		t.Errorf("expected ErrRaceClosed, got %v", err)
	}
}

func TestCreateBetRejectsForeignDriver(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewBetService(repo, &fakeGateway{}, "house-wallet")

	user := createTestUser(t, db, "wallet-a")
	race := createTestRace(t, db, 11002, models.RaceStatusUpcoming, time.Now().Add(time.Hour), 501)
	other := createTestRace(t, db, 11003, models.RaceStatusUpcoming, time.Now().Add(time.Hour), 601)

	_, err := svc.CreateBet(context.Background(), user.ID, &models.CreateBetRequest{
		RaceID:   race.ID.String(),
		DriverID: other.Participants[0].ID.String(),
		Amount:   decimal.NewFromFloat(0.5),
		Odds:     decimal.NewFromFloat(2.5),
	})
	if !errors.Is(err, ErrDriverNotInRace) {
		t.Errorf("expected ErrDriverNotInRace, got %v", err)
	}
}

func TestCreateBetRejectsBadStake(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewBetService(repo, &fakeGateway{}, "house-wallet")

	user := createTestUser(t, db, "wallet-a")
	race := createTestRace(t, db, 11004, models.RaceStatusUpcoming, time.Now().Add(time.Hour), 501)

	cases := []struct {
		amount string
		odds   string
	}{
		{"0", "2.5"},
		{"-1", "2.5"},
		{"0.5", "0.9"},
	}

	for _, tc := range cases {
		amount, _ := decimal.NewFromString(tc.amount)
		odds, _ := decimal.NewFromString(tc.odds)
		_, err := svc.CreateBet(context.Background(), user.ID, &models.CreateBetRequest{
			RaceID:   race.ID.String(),
			DriverID: race.Participants[0].ID.String(),
			Amount:   amount,
			Odds:     odds,
		})
		if !errors.Is(err, ErrInvalidStake) {
			t.Errorf("amount=%s odds=%s: expected ErrInvalidStake, got %v", tc.amount, tc.odds, err)
		}
	}
}

func TestConfirmBetTransactionRecordsConfirmedBet(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	gateway := &fakeGateway{submitResult: "stake-sig-1"}
	svc := NewBetService(repo, gateway, "house-wallet")

	user := createTestUser(t, db, "wallet-a")
	race := createTestRace(t, db, 11005, models.RaceStatusLive, time.Now().Add(-time.Minute), 501)

	bet, err := svc.ConfirmBetTransaction(context.Background(), user.ID, &models.ConfirmBetTransactionRequest{
		SignedTransaction: "base64-tx",
		RaceID:            race.ID.String(),
		DriverID:          race.Participants[0].ID.String(),
		Amount:            decimal.NewFromFloat(0.5),
		Odds:              decimal.NewFromFloat(2.5),
	})
	if err != nil {
		t.Fatalf("ConfirmBetTransaction failed: %v", err)
	}

	if bet.Status != models.BetStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", bet.Status)
	}
	if bet.TxSignature == nil || *bet.TxSignature != "stake-sig-1" {
		t.Errorf("expected stake signature recorded, got %v", bet.TxSignature)
	}
	if len(gateway.submitted) != 1 || gateway.submitted[0] != "base64-tx" {
		t.Errorf("expected the signed transaction submitted, got %v", gateway.submitted)
	}

	// Replaying the same signature is rejected
	_, err = svc.ConfirmBetTransaction(context.Background(), user.ID, &models.ConfirmBetTransactionRequest{
		SignedTransaction: "base64-tx",
		RaceID:            race.ID.String(),
		DriverID:          race.Participants[0].ID.String(),
		Amount:            decimal.NewFromFloat(0.5),
	})
	if !errors.Is(err, repository.ErrDuplicateTxSignature) {
		t.Errorf("expected ErrDuplicateTxSignature on replay, got %v", err)
	}
}
