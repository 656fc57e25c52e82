package iracing

import (
	"context"
	"time"
)

// RaceDataSource is the read surface the rest of the application uses.
// Two implementations exist: the live OAuth-backed Client and the
// StubClient used when credentials are not configured.
type RaceDataSource interface {
	GetProfile(ctx context.Context) (*Profile, error)
	GetUserRaces(ctx context.Context, custID int64) ([]MemberRace, error)
	GetRaceResults(ctx context.Context, subsessionID int64) (*RaceResult, error)
	GetActiveSeries(ctx context.Context) ([]Series, error)
}

// Profile is an iRacing member profile
type Profile struct {
	CustID      int64  `json:"cust_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// MemberRace is one entry of a member's recent race history
type MemberRace struct {
	SubsessionID   int64     `json:"subsession_id"`
	SeriesName     string    `json:"series_name"`
	Track          string    `json:"track"`
	SessionStart   time.Time `json:"session_start_time"`
	StartPosition  int       `json:"start_position"`
	FinishPosition int       `json:"finish_position"`
}

// Series describes an active racing series
type Series struct {
	SeriesID   int64  `json:"series_id"`
	SeriesName string `json:"series_name"`
	Category   string `json:"category"`
}

// Track identifies the circuit a subsession ran on
type Track struct {
	TrackName  string `json:"track_name"`
	ConfigName string `json:"config_name"`
}

// RaceResult is the result sheet of a completed subsession
type RaceResult struct {
	SubsessionID     int64          `json:"subsession_id"`
	Name             string         `json:"name"`
	Track            Track          `json:"track"`
	SessionStartTime time.Time      `json:"session_start_time"`
	SessionEndTime   time.Time      `json:"session_end_time"`
	Results          []DriverResult `json:"results"`
}

// DriverResult is one driver's row in a result sheet.
// FinishPosition is zero-based; -1 is the API's "did not finish" sentinel.
type DriverResult struct {
	CustID         int64   `json:"cust_id"`
	DisplayName    string  `json:"display_name"`
	FinishPosition int     `json:"finish_position"`
	CarNumber      string  `json:"car_number"`
	TeamName       *string `json:"team_name"`
	Interval       string  `json:"interval"`
	LapsCompleted  int     `json:"laps_completed"`
	LapsLed        int     `json:"laps_led"`
}
