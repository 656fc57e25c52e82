package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RaceStatus string

const (
	RaceStatusUpcoming  RaceStatus = "UPCOMING"
	RaceStatusLive      RaceStatus = "LIVE"
	RaceStatusCompleted RaceStatus = "COMPLETED"
	RaceStatusCancelled RaceStatus = "CANCELLED"
)

type DriverStatus string

const (
	DriverStatusRegistered DriverStatus = "REGISTERED"
	DriverStatusRacing     DriverStatus = "RACING"
	DriverStatusFinished   DriverStatus = "FINISHED"
	DriverStatusDNF        DriverStatus = "DNF"
	DriverStatusDSQ        DriverStatus = "DSQ"
)

// Race represents an iRacing session that can be bet on
type Race struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubsessionID int64      `gorm:"uniqueIndex;not null" json:"subsession_id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Track        string     `gorm:"size:255;not null" json:"track"`
	Category     string     `gorm:"size:100" json:"category"`
	StartTime    time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Status       RaceStatus `gorm:"size:20;not null;default:UPCOMING;index" json:"status"`
	Participants []Driver   `gorm:"foreignKey:RaceID" json:"participants,omitempty"`
	Bets         []Bet      `gorm:"foreignKey:RaceID" json:"bets,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Race) TableName() string {
	return "races"
}

func (r *Race) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Driver represents a participant of a single race
type Driver struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	RaceID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"race_id"`
	IRacingID      int64        `gorm:"column:iracing_id;not null;index" json:"iracing_id"`
	Name           string       `gorm:"size:255;not null" json:"name"`
	CarNumber      string       `gorm:"size:10" json:"car_number"`
	TeamName       *string      `gorm:"size:255" json:"team_name,omitempty"`
	Status         DriverStatus `gorm:"size:20;not null;default:REGISTERED" json:"status"`
	FinishPosition *int         `json:"finish_position,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// CreateRaceRequest represents a request to manually add a race
type CreateRaceRequest struct {
	SubsessionID int64               `json:"subsession_id" binding:"required"`
	Name         string              `json:"name" binding:"required"`
	Track        string              `json:"track" binding:"required"`
	Category     string              `json:"category"`
	StartTime    time.Time           `json:"start_time" binding:"required"`
	Participants []CreateDriverEntry `json:"participants"`
}

// CreateDriverEntry represents a driver row in a race-creation request
type CreateDriverEntry struct {
	IRacingID int64   `json:"iracing_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	CarNumber string  `json:"car_number"`
	TeamName  *string `json:"team_name"`
}
