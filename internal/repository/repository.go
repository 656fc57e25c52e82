package repository

import (
	"context"
	"time"

	"github.com/rockomatthews/crypto-racer/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateRace creates a race together with its participants
func (r *Repository) CreateRace(ctx context.Context, race *models.Race) error {
	return r.db.WithContext(ctx).Create(race).Error
}

// GetRaceByID retrieves a race with its participants
func (r *Repository) GetRaceByID(ctx context.Context, raceID uuid.UUID) (*models.Race, error) {
	var race models.Race
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", raceID).
		First(&race).Error
	if err != nil {
		return nil, err
	}
	return &race, nil
}

// ListRaces retrieves all races ordered by start time, participants included
func (r *Repository) ListRaces(ctx context.Context) ([]*models.Race, error) {
	var races []*models.Race
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Order("start_time ASC").
		Find(&races).Error
	if err != nil {
		return nil, err
	}
	return races, nil
}

// GetRacesDueForResults finds races whose scheduled start has passed and
// that have not reached a terminal status yet
func (r *Repository) GetRacesDueForResults(ctx context.Context, now time.Time) ([]*models.Race, error) {
	var races []*models.Race
	err := r.db.WithContext(ctx).
		Where("start_time < ? AND status NOT IN ?", now,
			[]models.RaceStatus{models.RaceStatusCompleted, models.RaceStatusCancelled}).
		Find(&races).Error
	if err != nil {
		return nil, err
	}
	return races, nil
}

// GetCompletedRacesWithUnsettledBets finds completed races that still carry
// bets awaiting settlement or payout, so settlement failures are retried
// independently of result fetching
func (r *Repository) GetCompletedRacesWithUnsettledBets(ctx context.Context) ([]*models.Race, error) {
	var races []*models.Race
	err := r.db.WithContext(ctx).
		Distinct("races.*").
		Joins("JOIN bets ON bets.race_id = races.id").
		Where("races.status = ?", models.RaceStatusCompleted).
		Where("bets.status = ? OR (bets.status = ? AND bets.payout_claimed = ?)",
			models.BetStatusConfirmed, models.BetStatusWon, false).
		Find(&races).Error
	if err != nil {
		return nil, err
	}
	return races, nil
}

// CompleteRace marks a race COMPLETED with its reported end time. The
// update is conditional on the race not already being terminal.
func (r *Repository) CompleteRace(ctx context.Context, raceID uuid.UUID, endTime time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Race{}).
		Where("id = ? AND status NOT IN ?", raceID,
			[]models.RaceStatus{models.RaceStatusCompleted, models.RaceStatusCancelled}).
		Updates(map[string]interface{}{
			"status":   models.RaceStatusCompleted,
			"end_time": endTime,
		}).Error
}

// GetDriverByID retrieves a driver by ID
func (r *Repository) GetDriverByID(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).Where("id = ?", driverID).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// GetDriverByIRacingID finds a race participant by their external id
func (r *Repository) GetDriverByIRacingID(ctx context.Context, raceID uuid.UUID, iracingID int64) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).
		Where("race_id = ? AND iracing_id = ?", raceID, iracingID).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// UpdateDriverResult records a driver's finish position and derived status
func (r *Repository) UpdateDriverResult(
	ctx context.Context,
	driverID uuid.UUID,
	finishPosition int,
	status models.DriverStatus,
) error {
	return r.db.WithContext(ctx).Model(&models.Driver{}).
		Where("id = ?", driverID).
		Updates(map[string]interface{}{
			"finish_position": finishPosition,
			"status":          status,
		}).Error
}
