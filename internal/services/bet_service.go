package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rockomatthews/crypto-racer/internal/blockchain"
	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrRaceClosed is returned when betting on a race that is no longer open
	ErrRaceClosed = errors.New("race is not open for betting")

	// ErrDriverNotInRace is returned when the chosen driver is not a
	// participant of the chosen race
	ErrDriverNotInRace = errors.New("driver is not a participant of this race")

	// ErrInvalidStake is returned for non-positive stakes or odds below 1
	ErrInvalidStake = errors.New("stake must be positive and odds at least 1")
)

// TransferGateway is the slice of the Solana client the bet flow needs
type TransferGateway interface {
	BuildTransferBase64(ctx context.Context, from, to string, amount decimal.Decimal, memo []byte) (string, error)
	SubmitSignedTransaction(ctx context.Context, rawBase64 string) (string, error)
	ValidateWalletAddress(address string) bool
}

// BetService handles bet placement and the stake-transfer flow
type BetService struct {
	repo        *repository.Repository
	gateway     TransferGateway
	houseWallet string
}

func NewBetService(repo *repository.Repository, gateway TransferGateway, houseWallet string) *BetService {
	return &BetService{
		repo:        repo,
		gateway:     gateway,
		houseWallet: houseWallet,
	}
}

// ListBets returns all bets
func (s *BetService) ListBets(ctx context.Context, limit, offset int) ([]*models.Bet, error) {
	return s.repo.ListBets(ctx, limit, offset)
}

// ListUserBets returns a user's bets
func (s *BetService) ListUserBets(ctx context.Context, userID uint, limit, offset int) ([]*models.Bet, error) {
	return s.repo.ListUserBets(ctx, userID, limit, offset)
}

// validateSelection checks that the race is open and the driver actually
// runs in it. The race/driver pairing is not enforced at the schema level,
// so every write path goes through here.
func (s *BetService) validateSelection(ctx context.Context, raceID, driverID uuid.UUID) (*models.Race, *models.Driver, error) {
	race, err := s.repo.GetRaceByID(ctx, raceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load race: %w", err)
	}

	if race.Status == models.RaceStatusCompleted || race.Status == models.RaceStatusCancelled {
		return nil, nil, ErrRaceClosed
	}

	driver, err := s.repo.GetDriverByID(ctx, driverID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load driver: %w", err)
	}

	if driver.RaceID != race.ID {
		return nil, nil, ErrDriverNotInRace
	}

	return race, driver, nil
}

// CreateBet records a PENDING bet before any stake transfer exists
func (s *BetService) CreateBet(ctx context.Context, userID uint, req *models.CreateBetRequest) (*models.Bet, error) {
	raceID, err := uuid.Parse(req.RaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid race id: %w", err)
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver id: %w", err)
	}

	if !req.Amount.IsPositive() || req.Odds.LessThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidStake
	}

	race, driver, err := s.validateSelection(ctx, raceID, driverID)
	if err != nil {
		return nil, err
	}

	bet := &models.Bet{
		UserID:   userID,
		RaceID:   race.ID,
		DriverID: driver.ID,
		Amount:   req.Amount,
		Odds:     req.Odds,
		Status:   models.BetStatusPending,
	}

	if err := s.repo.CreateBet(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	return bet, nil
}

// CreateBetTransaction builds the unsigned user-to-house stake transfer the
// wallet will sign, returned base64-serialized
func (s *BetService) CreateBetTransaction(ctx context.Context, userID uint, req *models.CreateBetTransactionRequest) (string, error) {
	raceID, err := uuid.Parse(req.RaceID)
	if err != nil {
		return "", fmt.Errorf("invalid race id: %w", err)
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		return "", fmt.Errorf("invalid driver id: %w", err)
	}

	if !req.Amount.IsPositive() {
		return "", ErrInvalidStake
	}

	if !s.gateway.ValidateWalletAddress(req.WalletAddress) {
		return "", fmt.Errorf("invalid wallet address")
	}

	race, driver, err := s.validateSelection(ctx, raceID, driverID)
	if err != nil {
		return "", err
	}

	memo := blockchain.TransferMemo{
		Type:     "bet",
		UserID:   userID,
		RaceID:   race.ID.String(),
		DriverID: driver.ID.String(),
	}

	return s.gateway.BuildTransferBase64(ctx, req.WalletAddress, s.houseWallet, req.Amount, memo.Encode())
}

// ConfirmBetTransaction submits the signed stake transfer, waits for it to
// land, and records the bet as CONFIRMED with the on-chain signature
func (s *BetService) ConfirmBetTransaction(ctx context.Context, userID uint, req *models.ConfirmBetTransactionRequest) (*models.Bet, error) {
	raceID, err := uuid.Parse(req.RaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid race id: %w", err)
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver id: %w", err)
	}

	if !req.Amount.IsPositive() {
		return nil, ErrInvalidStake
	}

	race, driver, err := s.validateSelection(ctx, raceID, driverID)
	if err != nil {
		return nil, err
	}

	signature, err := s.gateway.SubmitSignedTransaction(ctx, req.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to submit stake transfer: %w", err)
	}

	odds := req.Odds
	if odds.IsZero() {
		odds = decimal.NewFromInt(1)
	}

	bet := &models.Bet{
		UserID:      userID,
		RaceID:      race.ID,
		DriverID:    driver.ID,
		Amount:      req.Amount,
		Odds:        odds,
		Status:      models.BetStatusConfirmed,
		TxSignature: &signature,
	}

	if err := s.repo.CreateBet(ctx, bet); err != nil {
		if errors.Is(err, repository.ErrDuplicateTxSignature) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	log.Printf("Bet %s confirmed: user=%d race=%s driver=%s stake=%s sig=%s",
		bet.ID, userID, race.ID, driver.ID, req.Amount, signature)

	return bet, nil
}
