package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"traffic-forecast-service/internal/domain"
	"traffic-forecast-service/internal/platform/obs"
	"traffic-forecast-service/internal/ports"

	"go.uber.org/zap"
)

// SearchInput is the free text the user entered for both ends of the trip.
// Empty Modes means every transport mode.
type SearchInput struct {
	Start string
	End   string
	Modes []string
}

// Selection picks candidate indexes. A nil index leaves the role as is.
type Selection struct {
	Start *int
	End   *int
}

// Deps are the collaborators of a Workflow. Conditions is optional.
type Deps struct {
	Geocoder   ports.Geocoder
	Router     ports.RouteEstimator
	Renderer   ports.MapRenderer
	Store      ports.SessionStore
	Conditions ports.ConditionsProvider
	Logger     *zap.Logger
}

// Workflow drives a session through Search -> Confirm -> Forecast.
//
// It holds no session data itself: every operation loads the session from
// the store, applies one transition and saves it back. A state is only
// saved after its invariants hold.
type Workflow struct {
	geocoder   ports.Geocoder
	router     ports.RouteEstimator
	renderer   ports.MapRenderer
	store      ports.SessionStore
	conditions ports.ConditionsProvider
	log        *zap.Logger
	now        func() time.Time
}

func NewWorkflow(d Deps) (*Workflow, error) {
	switch {
	case d.Geocoder == nil:
		return nil, errors.New("workflow: geocoder is nil")
	case d.Router == nil:
		return nil, errors.New("workflow: route estimator is nil")
	case d.Renderer == nil:
		return nil, errors.New("workflow: map renderer is nil")
	case d.Store == nil:
		return nil, errors.New("workflow: session store is nil")
	}

	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Workflow{
		geocoder:   d.Geocoder,
		router:     d.Router,
		renderer:   d.Renderer,
		store:      d.Store,
		conditions: d.Conditions,
		log:        log.Named("workflow"),
		now:        time.Now,
	}, nil
}

// State returns the stored state, or the initial state for unknown sessions.
func (w *Workflow) State(ctx context.Context, id string) (*domain.SessionState, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return w.load(ctx, id)
}

// Search geocodes both queries and moves the session to Confirm. Any prior
// state is superseded. When both queries resolve to exactly one candidate
// the session advances straight to Forecast.
func (w *Workflow) Search(ctx context.Context, id string, in SearchInput) (_ *domain.SessionState, err error) {
	defer obs.Time(ctx, "workflow.Search")(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}

	current, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}

	startQuery := strings.TrimSpace(in.Start)
	endQuery := strings.TrimSpace(in.End)
	if startQuery == "" {
		return current, domain.ValidationError{Field: "start", Reason: "must be non-empty"}
	}
	if endQuery == "" {
		return current, domain.ValidationError{Field: "end", Reason: "must be non-empty"}
	}

	modes, err := domain.NormalizeModes(in.Modes)
	if err != nil {
		return current, err
	}

	state := domain.NewSessionState(id)
	state.StartQuery = startQuery
	state.EndQuery = endQuery
	state.Modes = modes

	startCandidates, err := w.geocode(ctx, domain.RoleStart, startQuery)
	if err != nil {
		return w.fail(ctx, state, err)
	}
	endCandidates, err := w.geocode(ctx, domain.RoleEnd, endQuery)
	if err != nil {
		return w.fail(ctx, state, err)
	}

	state.StartCandidates = startCandidates
	state.EndCandidates = endCandidates
	state.Stage = domain.StageConfirm

	w.log.Info("search resolved",
		zap.String("session", id),
		zap.Int("start_candidates", len(startCandidates)),
		zap.Int("end_candidates", len(endCandidates)),
	)

	if len(startCandidates) == 1 && len(endCandidates) == 1 {
		if err := applySelection(state, Selection{}); err != nil {
			return nil, fmt.Errorf("workflow: auto-select: %w", err)
		}
		return w.forecast(ctx, state)
	}

	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Select confirms candidates for one or both roles. Once both roles are
// confirmed the route is estimated and the session moves to Forecast.
func (w *Workflow) Select(ctx context.Context, id string, sel Selection) (_ *domain.SessionState, err error) {
	defer obs.Time(ctx, "workflow.Select")(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}

	state, err := w.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.Stage != domain.StageConfirm {
		return state, fmt.Errorf("%w: select in stage %q", domain.ErrInvalidTransition, state.Stage)
	}

	next := *state
	if err := applySelection(&next, sel); err != nil {
		return state, err
	}

	if next.Start == nil || next.End == nil {
		if err := w.save(ctx, &next); err != nil {
			return nil, err
		}
		return &next, nil
	}

	return w.forecast(ctx, &next)
}

// Reset returns the session to the initial empty state. Calling it again
// has no further effect.
func (w *Workflow) Reset(ctx context.Context, id string) (_ *domain.SessionState, err error) {
	defer obs.Time(ctx, "workflow.Reset")(&err)

	if err := validateID(id); err != nil {
		return nil, err
	}

	state := domain.NewSessionState(id)
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (w *Workflow) geocode(ctx context.Context, role domain.Role, query string) ([]domain.LocationCandidate, error) {
	candidates, err := w.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, &domain.NoMatchError{Role: role, Query: query, Cause: err}
	}
	if len(candidates) == 0 {
		return nil, &domain.NoMatchError{Role: role, Query: query}
	}
	return candidates, nil
}

// forecast estimates the confirmed trip. On failure the session stays in
// Confirm with its selections so the user can pick again.
func (w *Workflow) forecast(ctx context.Context, state *domain.SessionState) (*domain.SessionState, error) {
	from := state.Start.Candidate
	to := state.End.Candidate

	est, err := w.router.Estimate(ctx, from.Coordinates, to.Coordinates, state.Modes)
	if err == nil && (est == nil || len(est.Modes) != len(state.Modes)) {
		err = fmt.Errorf("estimate covers %d of %d modes", countModes(est), len(state.Modes))
	}
	if err != nil {
		return w.fail(ctx, state, &domain.RouteUnavailableError{From: from.Label, To: to.Label, Cause: err})
	}

	view, err := w.renderer.Render(from.Coordinates, to.Coordinates, est.Path)
	if err != nil {
		return w.fail(ctx, state, fmt.Errorf("workflow: render map: %w", err))
	}

	state.Stage = domain.StageForecast
	state.Estimate = est
	state.Map = view
	state.Conditions = w.currentConditions(ctx, from.Coordinates)

	w.log.Info("forecast ready",
		zap.String("session", state.ID),
		zap.String("from", from.Label),
		zap.String("to", to.Label),
		zap.Int("modes", len(est.Modes)),
	)

	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (w *Workflow) currentConditions(ctx context.Context, at domain.Coordinates) *domain.Conditions {
	if w.conditions == nil {
		return nil
	}
	cond, err := w.conditions.Current(ctx, at)
	if err != nil {
		w.log.Warn("conditions unavailable", zap.Error(err))
		return nil
	}
	return cond
}

// fail saves state as it stands and returns it with cause.
func (w *Workflow) fail(ctx context.Context, state *domain.SessionState, cause error) (*domain.SessionState, error) {
	state.Estimate = nil
	state.Map = nil
	state.Conditions = nil
	if err := w.save(ctx, state); err != nil {
		return nil, errors.Join(cause, err)
	}
	return state, cause
}

func (w *Workflow) load(ctx context.Context, id string) (*domain.SessionState, error) {
	state, err := w.store.Load(ctx, id)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return domain.NewSessionState(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("workflow: load session: %w", err)
	}
	return state, nil
}

func (w *Workflow) save(ctx context.Context, state *domain.SessionState) error {
	if err := state.CheckInvariants(); err != nil {
		return fmt.Errorf("workflow: session %q: %w", state.ID, err)
	}
	state.UpdatedAt = w.now().UTC()
	if err := w.store.Save(ctx, state); err != nil {
		return fmt.Errorf("workflow: save session: %w", err)
	}
	return nil
}

// applySelection confirms the chosen indexes on state. Roles left nil with
// a single candidate are confirmed implicitly.
func applySelection(state *domain.SessionState, sel Selection) error {
	pick := func(role domain.Role, idx *int, current *domain.ConfirmedLocation) (*domain.ConfirmedLocation, error) {
		candidates := state.Candidates(role)
		switch {
		case idx != nil:
			return domain.Confirm(role, candidates, *idx)
		case current != nil:
			return current, nil
		case len(candidates) == 1:
			return domain.Confirm(role, candidates, 0)
		}
		return nil, nil
	}

	start, err := pick(domain.RoleStart, sel.Start, state.Start)
	if err != nil {
		return err
	}
	end, err := pick(domain.RoleEnd, sel.End, state.End)
	if err != nil {
		return err
	}

	state.Start = start
	state.End = end
	return nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationError{Field: "session", Reason: "must be non-empty"}
	}
	return nil
}

func countModes(est *domain.RouteEstimate) int {
	if est == nil {
		return 0
	}
	return len(est.Modes)
}
