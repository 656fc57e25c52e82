package iracing

import (
	"context"
	"time"
)

// StubClient serves fixed placeholder data. It is selected at startup when
// no iRacing API credentials are configured, so the rest of the application
// never needs to branch on configuration state.
type StubClient struct{}

// NewStubClient creates the offline data source
func NewStubClient() *StubClient {
	return &StubClient{}
}

func (s *StubClient) GetProfile(ctx context.Context) (*Profile, error) {
	return &Profile{
		CustID:      123456,
		Email:       "demo@example.com",
		DisplayName: "Demo Racer",
	}, nil
}

func (s *StubClient) GetUserRaces(ctx context.Context, custID int64) ([]MemberRace, error) {
	return []MemberRace{
		{
			SubsessionID:   12345,
			SeriesName:     "Demo Series",
			Track:          "Daytona International Speedway",
			SessionStart:   time.Now().Add(-24 * time.Hour),
			StartPosition:  5,
			FinishPosition: 2,
		},
	}, nil
}

// GetRaceResults reports no published results in offline mode. Races stay
// in their current status rather than settling against fabricated data.
func (s *StubClient) GetRaceResults(ctx context.Context, subsessionID int64) (*RaceResult, error) {
	return nil, nil
}

func (s *StubClient) GetActiveSeries(ctx context.Context) ([]Series, error) {
	return []Series{
		{SeriesID: 1, SeriesName: "NASCAR iRacing Series", Category: "Oval"},
		{SeriesID: 2, SeriesName: "Grand Prix Series", Category: "Road"},
	}, nil
}
