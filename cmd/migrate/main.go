package main

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rockomatthews/crypto-racer/internal/config"
	"github.com/rockomatthews/crypto-racer/internal/database"
	"github.com/rockomatthews/crypto-racer/internal/models"
)

// Applies the schema and loads demo data so the frontend has something to
// show against a fresh database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	log.Println("Start seeding...")

	// Clean up existing data
	db.Exec("DELETE FROM bets")
	db.Exec("DELETE FROM drivers")
	db.Exec("DELETE FROM races")
	db.Exec("DELETE FROM users")

	john := "john@example.com"
	johnWallet := "5FHwkrdxbtjJzZKZhNCvq7C2WmwYPRtYu1pzgzKvEeMj"
	johnID := int64(123456)
	user1 := models.User{
		Email:         &john,
		Name:          "John Doe",
		IRacingID:     &johnID,
		WalletAddress: &johnWallet,
	}
	if err := db.Create(&user1).Error; err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	jane := "jane@example.com"
	janeWallet := "5FGfbZdEaH12ZzF1jV8jMqbsWsfRVyeHHnxzr9zXs1Wi"
	janeID := int64(654321)
	user2 := models.User{
		Email:         &jane,
		Name:          "Jane Smith",
		IRacingID:     &janeID,
		WalletAddress: &janeWallet,
	}
	if err := db.Create(&user2).Error; err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	teamA, teamB, teamC := "Team A", "Team B", "Team C"
	upcomingRace := models.Race{
		SubsessionID: 12345,
		Name:         "Daytona 500",
		Track:        "Daytona International Speedway",
		Category:     "Oval",
		StartTime:    time.Now().Add(7 * 24 * time.Hour),
		Status:       models.RaceStatusUpcoming,
		Participants: []models.Driver{
			{IRacingID: 100001, Name: "Driver 1", CarNumber: "1", TeamName: &teamA, Status: models.DriverStatusRegistered},
			{IRacingID: 100002, Name: "Driver 2", CarNumber: "2", TeamName: &teamB, Status: models.DriverStatusRegistered},
			{IRacingID: 100003, Name: "Driver 3", CarNumber: "3", TeamName: &teamC, Status: models.DriverStatusRegistered},
		},
	}
	if err := db.Create(&upcomingRace).Error; err != nil {
		log.Fatalf("Failed to seed race: %v", err)
	}

	teamX, teamY, teamZ := "Team X", "Team Y", "Team Z"
	liveRace := models.Race{
		SubsessionID: 23456,
		Name:         "Monaco Grand Prix",
		Track:        "Circuit de Monaco",
		Category:     "Road",
		StartTime:    time.Now().Add(-2 * time.Hour),
		Status:       models.RaceStatusLive,
		Participants: []models.Driver{
			{IRacingID: 200001, Name: "Driver A", CarNumber: "10", TeamName: &teamX, Status: models.DriverStatusRacing},
			{IRacingID: 200002, Name: "Driver B", CarNumber: "20", TeamName: &teamY, Status: models.DriverStatusRacing},
			{IRacingID: 200003, Name: "Driver C", CarNumber: "30", TeamName: &teamZ, Status: models.DriverStatusDNF},
		},
	}
	if err := db.Create(&liveRace).Error; err != nil {
		log.Fatalf("Failed to seed race: %v", err)
	}

	alpha, beta, gamma := "Team Alpha", "Team Beta", "Team Gamma"
	p1, p2, p3 := 0, 1, 2
	endTime := time.Now().Add(-2 * 24 * time.Hour)
	completedRace := models.Race{
		SubsessionID: 34567,
		Name:         "Nürburgring 24h",
		Track:        "Nürburgring",
		Category:     "Road",
		StartTime:    time.Now().Add(-3 * 24 * time.Hour),
		EndTime:      &endTime,
		Status:       models.RaceStatusCompleted,
		Participants: []models.Driver{
			{IRacingID: 300001, Name: "Driver Alpha", CarNumber: "100", TeamName: &alpha, Status: models.DriverStatusFinished, FinishPosition: &p1},
			{IRacingID: 300002, Name: "Driver Beta", CarNumber: "200", TeamName: &beta, Status: models.DriverStatusFinished, FinishPosition: &p2},
			{IRacingID: 300003, Name: "Driver Gamma", CarNumber: "300", TeamName: &gamma, Status: models.DriverStatusFinished, FinishPosition: &p3},
		},
	}
	if err := db.Create(&completedRace).Error; err != nil {
		log.Fatalf("Failed to seed race: %v", err)
	}

	sig1 := "tx_sig_123456789"
	firstBet := models.Bet{
		UserID:      user1.ID,
		RaceID:      upcomingRace.ID,
		DriverID:    upcomingRace.Participants[0].ID,
		Amount:      decimal.NewFromFloat(0.5),
		Odds:        decimal.NewFromFloat(2.5),
		Status:      models.BetStatusConfirmed,
		TxSignature: &sig1,
	}
	if err := db.Create(&firstBet).Error; err != nil {
		log.Fatalf("Failed to seed bet: %v", err)
	}

	sig2 := "tx_sig_987654321"
	payoutSig := "payout_tx_123"
	secondBet := models.Bet{
		UserID:            user2.ID,
		RaceID:            completedRace.ID,
		DriverID:          completedRace.Participants[0].ID,
		Amount:            decimal.NewFromFloat(1.0),
		Odds:              decimal.NewFromFloat(3.0),
		Status:            models.BetStatusWon,
		TxSignature:       &sig2,
		PayoutTxSignature: &payoutSig,
	}
	if err := db.Create(&secondBet).Error; err != nil {
		log.Fatalf("Failed to seed bet: %v", err)
	}

	log.Println("Seeding finished.")
}
