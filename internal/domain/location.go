package domain

import "fmt"

// Role names which end of the trip a location is confirmed for.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
)

func (r Role) String() string { return string(r) }

// LocationCandidate is one geocoded match for a free-text query.
// Candidates are produced per search and never mutated.
type LocationCandidate struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Coordinates Coordinates `json:"coordinates"`
}

// ConfirmedLocation is a candidate the user picked for a role.
type ConfirmedLocation struct {
	Role      Role              `json:"role"`
	Candidate LocationCandidate `json:"candidate"`
}

// Confirm selects candidates[index] for the given role.
func Confirm(role Role, candidates []LocationCandidate, index int) (*ConfirmedLocation, error) {
	if index < 0 || index >= len(candidates) {
		return nil, fmt.Errorf("%w: %s index %d not in [0,%d)", ErrInvalidSelection, role, index, len(candidates))
	}
	return &ConfirmedLocation{Role: role, Candidate: candidates[index]}, nil
}
