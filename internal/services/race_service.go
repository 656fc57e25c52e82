package services

import (
	"context"
	"fmt"

	"github.com/rockomatthews/crypto-racer/internal/models"
	"github.com/rockomatthews/crypto-racer/internal/repository"

	"github.com/google/uuid"
)

// RaceService handles race browsing and manual race creation
type RaceService struct {
	repo *repository.Repository
}

func NewRaceService(repo *repository.Repository) *RaceService {
	return &RaceService{repo: repo}
}

// ListRaces returns all races ordered by start time
func (s *RaceService) ListRaces(ctx context.Context) ([]*models.Race, error) {
	return s.repo.ListRaces(ctx)
}

// GetRace returns a race with its participants
func (s *RaceService) GetRace(ctx context.Context, raceID uuid.UUID) (*models.Race, error) {
	return s.repo.GetRaceByID(ctx, raceID)
}

// CreateRace adds a race and its participants to the book
func (s *RaceService) CreateRace(ctx context.Context, req *models.CreateRaceRequest) (*models.Race, error) {
	race := &models.Race{
		SubsessionID: req.SubsessionID,
		Name:         req.Name,
		Track:        req.Track,
		Category:     req.Category,
		StartTime:    req.StartTime,
		Status:       models.RaceStatusUpcoming,
	}

	for _, entry := range req.Participants {
		race.Participants = append(race.Participants, models.Driver{
			IRacingID: entry.IRacingID,
			Name:      entry.Name,
			CarNumber: entry.CarNumber,
			TeamName:  entry.TeamName,
			Status:    models.DriverStatusRegistered,
		})
	}

	if err := s.repo.CreateRace(ctx, race); err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}

	return race, nil
}
