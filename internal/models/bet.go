package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BetStatus string

const (
	BetStatusPending   BetStatus = "PENDING"
	BetStatusConfirmed BetStatus = "CONFIRMED"
	BetStatusWon       BetStatus = "WON"
	BetStatusLost      BetStatus = "LOST"
	BetStatusPaidOut   BetStatus = "PAID_OUT"
)

// Bet represents a SOL wager on a single driver in a single race.
// Lifecycle: PENDING -> CONFIRMED -> WON/LOST, WON -> PAID_OUT.
// LOST and PAID_OUT are terminal; the repository enforces transitions
// with conditional updates so a settled bet is never touched again.
type Bet struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	User              *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RaceID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"race_id"`
	Race              *Race           `gorm:"foreignKey:RaceID" json:"race,omitempty"`
	DriverID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"driver_id"`
	Driver            *Driver         `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,9);not null" json:"amount"`
	Odds              decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"odds"`
	Status            BetStatus       `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	TxSignature       *string         `gorm:"uniqueIndex;size:255" json:"tx_signature,omitempty"`
	PayoutTxSignature *string         `gorm:"size:255" json:"payout_tx_signature,omitempty"`
	PayoutClaimed     bool            `gorm:"not null;default:false" json:"payout_claimed"`
	SettledAt         *time.Time      `json:"settled_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Bet) TableName() string {
	return "bets"
}

func (b *Bet) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Payout returns the amount owed on a winning bet (stake times odds)
func (b *Bet) Payout() decimal.Decimal {
	return b.Amount.Mul(b.Odds)
}

// CreateBetRequest represents a request to place a bet
type CreateBetRequest struct {
	RaceID   string          `json:"race_id" binding:"required"`
	DriverID string          `json:"driver_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Odds     decimal.Decimal `json:"odds" binding:"required"`
}

// CreateBetTransactionRequest asks the server to build an unsigned
// stake transfer for the user's wallet to sign
type CreateBetTransactionRequest struct {
	WalletAddress string          `json:"wallet_address" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	RaceID        string          `json:"race_id" binding:"required"`
	DriverID      string          `json:"driver_id" binding:"required"`
}

// ConfirmBetTransactionRequest submits the signed stake transfer and
// records the bet once the transfer lands on-chain
type ConfirmBetTransactionRequest struct {
	SignedTransaction string          `json:"signed_transaction" binding:"required"`
	RaceID            string          `json:"race_id" binding:"required"`
	DriverID          string          `json:"driver_id" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Odds              decimal.Decimal `json:"odds"`
}
