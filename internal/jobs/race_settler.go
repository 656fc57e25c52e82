package jobs

import (
	"context"
	"log"
	"time"

	"github.com/rockomatthews/crypto-racer/internal/services"
)

// RaceSettler periodically runs the settlement engine so races are settled
// even when the cron endpoint is never called
type RaceSettler struct {
	settlement *services.SettlementService
	interval   time.Duration
	stopChan   chan struct{}
}

// NewRaceSettler creates a new race settler job
func NewRaceSettler(settlement *services.SettlementService, interval time.Duration) *RaceSettler {
	return &RaceSettler{
		settlement: settlement,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the settlement loop
func (rs *RaceSettler) Start() {
	log.Printf("[RaceSettler] Starting settlement job (interval: %v)", rs.interval)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	// Run once on startup, then on every tick
	rs.runOnce()

	for {
		select {
		case <-ticker.C:
			rs.runOnce()
		case <-rs.stopChan:
			log.Println("[RaceSettler] Stopping settlement job")
			return
		}
	}
}

// Stop stops the settlement loop
func (rs *RaceSettler) Stop() {
	close(rs.stopChan)
}

func (rs *RaceSettler) runOnce() {
	ctx := context.Background()
	if err := rs.settlement.UpdateRaceStatuses(ctx); err != nil {
		log.Printf("[RaceSettler] Settlement pass failed: %v", err)
	}
}
