// Package projects implements the project registry and the primary-market
// buy/sell transitions against the bonding curve.
package projects

import (
	"context"
	"fmt"

	"github.com/curvelaunch/launchpad/internal/app/curve"
	"github.com/curvelaunch/launchpad/internal/app/domain/project"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/events"
	"github.com/curvelaunch/launchpad/internal/app/locks"
	"github.com/curvelaunch/launchpad/internal/app/services/ledger"
	"github.com/curvelaunch/launchpad/internal/app/storage"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

// Funding defaults applied when the service config leaves them unset.
const (
	DefaultFundingGoal       = 100000
	DefaultFounderAllocation = 100
)

// Config carries the curve parameters and funding defaults.
type Config struct {
	Curve             curve.Curve
	DefaultGoal       float64
	FounderAllocation int64
}

// Service owns project creation and the buy/sell curve transitions. Every
// mutation runs under the project's keyed lock so supply, reserve, and the
// caller's holding move as one atomic step.
type Service struct {
	projects storage.ProjectStore
	ledger   *ledger.Service
	locks    *locks.KeyedMutex
	hub      *events.Hub
	log      *logger.Logger

	curve      curve.Curve
	goal       float64
	allocation int64
}

// New creates a project service.
func New(projects storage.ProjectStore, ledgerSvc *ledger.Service, keyed *locks.KeyedMutex, hub *events.Hub, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("projects")
	}
	if cfg.Curve == (curve.Curve{}) {
		cfg.Curve = curve.Default()
	}
	if cfg.DefaultGoal <= 0 {
		cfg.DefaultGoal = DefaultFundingGoal
	}
	if cfg.FounderAllocation <= 0 {
		cfg.FounderAllocation = DefaultFounderAllocation
	}
	return &Service{
		projects:   projects,
		ledger:     ledgerSvc,
		locks:      keyed,
		hub:        hub,
		log:        log,
		curve:      cfg.Curve,
		goal:       cfg.DefaultGoal,
		allocation: cfg.FounderAllocation,
	}
}

// CreateInput carries the founder-supplied project fields.
type CreateInput struct {
	Name        string  `json:"name"`
	Summary     string  `json:"summary"`
	Plan        string  `json:"plan"`
	VideoURL    string  `json:"video_url"`
	ResumeURL   string  `json:"resume_url"`
	TokenSymbol string  `json:"token_symbol"`
	FundingGoal float64 `json:"funding_goal"`
}

// Create registers a project and mints the founder allocation into the
// founder's holding.
func (s *Service) Create(ctx context.Context, founderID string, in CreateInput) (project.Project, error) {
	if founderID == "" {
		return project.Project{}, fmt.Errorf("founder id is required: %w", errs.ErrInvalidInput)
	}
	if in.Name == "" {
		return project.Project{}, fmt.Errorf("project name is required: %w", errs.ErrInvalidInput)
	}
	goal := in.FundingGoal
	if goal == 0 {
		goal = s.goal
	}
	if goal < 0 {
		return project.Project{}, fmt.Errorf("funding goal %v: %w", in.FundingGoal, errs.ErrInvalidAmount)
	}

	proj, err := s.projects.CreateProject(ctx, project.Project{
		FounderID:   founderID,
		Name:        in.Name,
		Summary:     in.Summary,
		Plan:        in.Plan,
		VideoURL:    in.VideoURL,
		ResumeURL:   in.ResumeURL,
		TokenSymbol: in.TokenSymbol,
		Supply:      s.allocation,
		FundingGoal: goal,
	})
	if err != nil {
		return project.Project{}, err
	}

	if _, err := s.ledger.Credit(ctx, founderID, proj.ID, s.allocation); err != nil {
		return project.Project{}, fmt.Errorf("mint founder allocation: %w", err)
	}

	s.log.WithField("project_id", proj.ID).WithField("founder_id", founderID).
		Infof("project created, %d tokens allocated", s.allocation)

	s.publish(events.Event{
		Type:      events.TypeProjectCreated,
		ProjectID: proj.ID,
		Actor:     founderID,
		Tokens:    s.allocation,
		Supply:    proj.Supply,
		Reserve:   proj.Reserve,
	})
	return proj, nil
}

// Buy converts fundsIn into tokens along the curve. The entire fundsIn lands
// in the reserve even when whole-token pricing leaves a remainder unspent.
func (s *Service) Buy(ctx context.Context, projectID, callerID string, fundsIn float64) (project.Project, int64, error) {
	if callerID == "" {
		return project.Project{}, 0, fmt.Errorf("caller id is required: %w", errs.ErrInvalidInput)
	}
	if fundsIn <= 0 {
		return project.Project{}, 0, fmt.Errorf("buy of %v: %w", fundsIn, errs.ErrInvalidAmount)
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return project.Project{}, 0, err
	}
	if proj.CapReached {
		return project.Project{}, 0, fmt.Errorf("project %s: %w", projectID, errs.ErrCapReached)
	}

	tokensOut := s.curve.BuyQuote(proj.Supply, fundsIn)
	if tokensOut == 0 {
		return project.Project{}, 0, fmt.Errorf("%v at supply %d: %w", fundsIn, proj.Supply, errs.ErrQuoteTooSmall)
	}

	if _, err := s.ledger.Credit(ctx, callerID, projectID, tokensOut); err != nil {
		return project.Project{}, 0, err
	}

	proj.Supply += tokensOut
	proj.Reserve += fundsIn
	proj.CapReached = proj.Reserve >= proj.FundingGoal

	proj, err = s.projects.UpdateProject(ctx, proj)
	if err != nil {
		// Revert the mint so a failed buy leaves no partial state. The
		// project lock is still held, so the credited tokens cannot
		// have moved.
		if _, derr := s.ledger.Debit(ctx, callerID, projectID, tokensOut); derr != nil {
			s.log.WithError(derr).WithField("project_id", projectID).
				Errorf("revert credit of %d tokens after failed project update", tokensOut)
		}
		return project.Project{}, 0, err
	}

	s.log.WithField("project_id", projectID).WithField("caller_id", callerID).
		Infof("buy of %v minted %d tokens, supply %d, reserve %v", fundsIn, tokensOut, proj.Supply, proj.Reserve)

	s.publish(events.Event{
		Type:      events.TypeProjectBought,
		ProjectID: projectID,
		Actor:     callerID,
		Tokens:    tokensOut,
		Amount:    fundsIn,
		Supply:    proj.Supply,
		Reserve:   proj.Reserve,
	})
	return proj, tokensOut, nil
}

// Sell burns tokensIn back into the curve and returns the proceeds. The
// reserve is clamped at zero against float drift, and the cap flag is not
// re-evaluated: selling never reopens a launched project.
func (s *Service) Sell(ctx context.Context, projectID, callerID string, tokensIn int64) (project.Project, float64, error) {
	if callerID == "" {
		return project.Project{}, 0, fmt.Errorf("caller id is required: %w", errs.ErrInvalidInput)
	}
	if tokensIn <= 0 {
		return project.Project{}, 0, fmt.Errorf("sell of %d: %w", tokensIn, errs.ErrInvalidAmount)
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return project.Project{}, 0, err
	}

	if _, err := s.ledger.Debit(ctx, callerID, projectID, tokensIn); err != nil {
		return project.Project{}, 0, err
	}

	amountOut := s.curve.SellQuote(proj.Supply, tokensIn)

	proj.Supply -= tokensIn
	if proj.Supply < 0 {
		proj.Supply = 0
	}
	proj.Reserve -= amountOut
	if proj.Reserve < 0 {
		proj.Reserve = 0
	}

	proj, err = s.projects.UpdateProject(ctx, proj)
	if err != nil {
		// Restore the burned tokens so a failed sell leaves no partial
		// state.
		if _, cerr := s.ledger.Credit(ctx, callerID, projectID, tokensIn); cerr != nil {
			s.log.WithError(cerr).WithField("project_id", projectID).
				Errorf("restore %d tokens after failed project update", tokensIn)
		}
		return project.Project{}, 0, err
	}

	s.log.WithField("project_id", projectID).WithField("caller_id", callerID).
		Infof("sell of %d tokens returned %v, supply %d, reserve %v", tokensIn, amountOut, proj.Supply, proj.Reserve)

	s.publish(events.Event{
		Type:      events.TypeProjectSold,
		ProjectID: projectID,
		Actor:     callerID,
		Tokens:    tokensIn,
		Amount:    amountOut,
		Supply:    proj.Supply,
		Reserve:   proj.Reserve,
	})
	return proj, amountOut, nil
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, projectID string) (project.Project, error) {
	return s.projects.GetProject(ctx, projectID)
}

// List returns every project in creation order.
func (s *Service) List(ctx context.Context) ([]project.Project, error) {
	return s.projects.ListProjects(ctx)
}

// Quote previews a buy without mutating anything.
func (s *Service) Quote(ctx context.Context, projectID string, fundsIn float64) (int64, error) {
	if fundsIn <= 0 {
		return 0, fmt.Errorf("quote of %v: %w", fundsIn, errs.ErrInvalidAmount)
	}
	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return s.curve.BuyQuote(proj.Supply, fundsIn), nil
}

func (s *Service) publish(event events.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}
