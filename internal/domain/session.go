package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Stage is a step of the search workflow.
type Stage string

const (
	StageSearch   Stage = "search"
	StageConfirm  Stage = "confirm"
	StageForecast Stage = "forecast"
)

// MapView is the rendered overlay for the forecast page.
type MapView struct {
	GeoJSON json.RawMessage `json:"geojson"`
}

// SessionState is the per-user interaction state. It is owned by one
// session and only mutated through the workflow.
type SessionState struct {
	ID              string              `json:"id"`
	Stage           Stage               `json:"stage"`
	StartQuery      string              `json:"start_query,omitempty"`
	EndQuery        string              `json:"end_query,omitempty"`
	Modes           []TransportMode     `json:"modes,omitempty"`
	StartCandidates []LocationCandidate `json:"start_candidates,omitempty"`
	EndCandidates   []LocationCandidate `json:"end_candidates,omitempty"`
	Start           *ConfirmedLocation  `json:"start,omitempty"`
	End             *ConfirmedLocation  `json:"end,omitempty"`
	Estimate        *RouteEstimate      `json:"estimate,omitempty"`
	Conditions      *Conditions         `json:"conditions,omitempty"`
	Map             *MapView            `json:"map,omitempty"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewSessionState returns the initial empty state for a session.
func NewSessionState(id string) *SessionState {
	return &SessionState{ID: id, Stage: StageSearch}
}

// Reset returns the state to its initial empty value, keeping the ID.
func (s *SessionState) Reset() {
	*s = SessionState{ID: s.ID, Stage: StageSearch}
}

// IsInitial reports whether s equals the initial empty value (ignoring UpdatedAt).
func (s *SessionState) IsInitial() bool {
	fresh := NewSessionState(s.ID)
	fresh.UpdatedAt = s.UpdatedAt
	a, _ := json.Marshal(s)
	b, _ := json.Marshal(fresh)
	return string(a) == string(b)
}

// Candidates returns the candidate list for role.
func (s *SessionState) Candidates(role Role) []LocationCandidate {
	if role == RoleStart {
		return s.StartCandidates
	}
	return s.EndCandidates
}

// CheckInvariants reports every structural violation in s.
func (s *SessionState) CheckInvariants() error {
	var errs []error

	switch s.Stage {
	case StageSearch:
		if s.Start != nil || s.End != nil {
			errs = append(errs, errors.New("search stage holds confirmed locations"))
		}
	case StageConfirm:
		if len(s.StartCandidates) == 0 || len(s.EndCandidates) == 0 {
			errs = append(errs, errors.New("confirm stage without candidates for both roles"))
		}
	case StageForecast:
		if s.Start == nil || s.End == nil {
			errs = append(errs, errors.New("forecast stage without both confirmed locations"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown stage %q", s.Stage))
	}

	if (s.Estimate != nil) != (s.Stage == StageForecast) {
		errs = append(errs, fmt.Errorf("route estimate present=%t in stage %q", s.Estimate != nil, s.Stage))
	}

	return errors.Join(errs...)
}
