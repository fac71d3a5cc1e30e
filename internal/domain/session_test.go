package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastState() *SessionState {
	fort := LocationCandidate{Name: "Gwalior Fort", Coordinates: Coordinates{Lon: 78.1691, Lat: 26.2303}}
	uni := LocationCandidate{Name: "Jiwaji University", Coordinates: Coordinates{Lon: 78.1980, Lat: 26.2110}}

	return &SessionState{
		ID:              "s1",
		Stage:           StageForecast,
		StartQuery:      "Gwalior Fort",
		EndQuery:        "Jiwaji University",
		Modes:           DefaultModes(),
		StartCandidates: []LocationCandidate{fort},
		EndCandidates:   []LocationCandidate{uni},
		Start:           &ConfirmedLocation{Role: RoleStart, Candidate: fort},
		End:             &ConfirmedLocation{Role: RoleEnd, Candidate: uni},
		Estimate: &RouteEstimate{
			Modes:      []ModeEstimate{{Mode: ModeCar, DurationSeconds: 600, DistanceMeters: 4200}},
			ComputedAt: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestSessionStateResetIsIdempotent(t *testing.T) {
	s := forecastState()
	require.NoError(t, s.CheckInvariants())

	s.Reset()
	assert.True(t, s.IsInitial())
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, StageSearch, s.Stage)

	s.Reset()
	assert.True(t, s.IsInitial())
	assert.NoError(t, s.CheckInvariants())
}

func TestSessionStateInvariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *SessionState)
		wantErr bool
	}{
		{name: "valid forecast", mutate: func(s *SessionState) {}},
		{
			name:    "estimate outside forecast",
			mutate:  func(s *SessionState) { s.Stage = StageConfirm },
			wantErr: true,
		},
		{
			name:    "forecast without estimate",
			mutate:  func(s *SessionState) { s.Estimate = nil },
			wantErr: true,
		},
		{
			name:    "forecast missing end",
			mutate:  func(s *SessionState) { s.End = nil },
			wantErr: true,
		},
		{
			name: "confirm without candidates",
			mutate: func(s *SessionState) {
				s.Stage = StageConfirm
				s.Estimate = nil
				s.EndCandidates = nil
			},
			wantErr: true,
		},
		{
			name:    "unknown stage",
			mutate:  func(s *SessionState) { s.Stage = "done" },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := forecastState()
			tc.mutate(s)
			err := s.CheckInvariants()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfirmRejectsOutOfRangeIndex(t *testing.T) {
	cands := []LocationCandidate{{Name: "A"}, {Name: "B"}}

	c, err := Confirm(RoleStart, cands, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", c.Candidate.Name)
	assert.Equal(t, RoleStart, c.Role)

	_, err = Confirm(RoleEnd, cands, 2)
	assert.True(t, errors.Is(err, ErrInvalidSelection))

	_, err = Confirm(RoleEnd, cands, -1)
	assert.True(t, errors.Is(err, ErrInvalidSelection))
}

func TestNormalizeModes(t *testing.T) {
	modes, err := NormalizeModes(nil)
	require.NoError(t, err)
	assert.Equal(t, []TransportMode{ModeCar, ModeTwoWheeler, ModeWalking}, modes)

	modes, err = NormalizeModes([]string{"walk", "Car", "car"})
	require.NoError(t, err)
	assert.Equal(t, []TransportMode{ModeWalking, ModeCar}, modes)

	_, err = NormalizeModes([]string{"helicopter"})
	var verr ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCoordinatesValidate(t *testing.T) {
	assert.NoError(t, Coordinates{Lon: 78.18, Lat: 26.21}.Validate())
	assert.Error(t, Coordinates{Lon: 200, Lat: 26.21}.Validate())
	assert.Error(t, Coordinates{Lon: 78.18, Lat: -91}.Validate())
}

func TestMarketClosedOn(t *testing.T) {
	tuesday := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	assert.True(t, MarketClosedOn(tuesday))
	assert.False(t, MarketClosedOn(tuesday.AddDate(0, 0, 1)))
}
