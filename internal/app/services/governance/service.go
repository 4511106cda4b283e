// Package governance implements milestones and the withdrawal proposals that
// release funds from a project's reserve. Milestone and proposal creation and
// release are founder-only; voting is open to any caller, any number of
// times.
package governance

import (
	"context"
	"fmt"

	"github.com/curvelaunch/launchpad/internal/app/domain/governance"
	"github.com/curvelaunch/launchpad/internal/app/domain/project"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/events"
	"github.com/curvelaunch/launchpad/internal/app/locks"
	"github.com/curvelaunch/launchpad/internal/app/storage"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

// Service owns the milestone/proposal state machine.
type Service struct {
	projects storage.ProjectStore
	gov      storage.GovernanceStore
	locks    *locks.KeyedMutex
	hub      *events.Hub
	log      *logger.Logger
}

// New creates a governance service.
func New(projects storage.ProjectStore, gov storage.GovernanceStore, keyed *locks.KeyedMutex, hub *events.Hub, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("governance")
	}
	return &Service{projects: projects, gov: gov, locks: keyed, hub: hub, log: log}
}

// ReleaseResult reports everything a release touched.
type ReleaseResult struct {
	Project   project.Project      `json:"project"`
	Proposal  governance.Proposal  `json:"proposal"`
	Milestone governance.Milestone `json:"milestone"`
	Moved     float64              `json:"moved"`
}

func (s *Service) requireFounder(ctx context.Context, projectID, callerID string) (project.Project, error) {
	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}
	if callerID == "" || callerID != proj.FounderID {
		return project.Project{}, fmt.Errorf("caller %s is not the founder of project %s: %w", callerID, projectID, errs.ErrForbidden)
	}
	return proj, nil
}

// CreateMilestone declares a founder deliverable with a planned budget.
func (s *Service) CreateMilestone(ctx context.Context, projectID, callerID, title, description string, amount float64) (governance.Milestone, error) {
	unlock := s.locks.Lock(projectID)
	defer unlock()

	if _, err := s.requireFounder(ctx, projectID, callerID); err != nil {
		return governance.Milestone{}, err
	}
	if title == "" {
		return governance.Milestone{}, fmt.Errorf("milestone title is required: %w", errs.ErrInvalidInput)
	}
	if amount <= 0 {
		return governance.Milestone{}, fmt.Errorf("milestone amount %v: %w", amount, errs.ErrInvalidInput)
	}

	ms, err := s.gov.CreateMilestone(ctx, governance.Milestone{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Amount:      amount,
		Status:      governance.MilestonePending,
	})
	if err != nil {
		return governance.Milestone{}, err
	}

	s.log.WithField("project_id", projectID).WithField("milestone_id", ms.ID).
		Infof("milestone created: %s for %v", title, amount)
	return ms, nil
}

// CreateProposal asks to withdraw amount against a milestone. The amount must
// stay within (0, milestone.Amount].
func (s *Service) CreateProposal(ctx context.Context, projectID, callerID, milestoneID string, amount float64) (governance.Proposal, error) {
	unlock := s.locks.Lock(projectID)
	defer unlock()

	if _, err := s.requireFounder(ctx, projectID, callerID); err != nil {
		return governance.Proposal{}, err
	}

	ms, err := s.gov.GetMilestone(ctx, milestoneID)
	if err != nil {
		return governance.Proposal{}, err
	}
	if ms.ProjectID != projectID {
		return governance.Proposal{}, fmt.Errorf("milestone %s does not belong to project %s: %w", milestoneID, projectID, errs.ErrInvalidInput)
	}
	if amount <= 0 || amount > ms.Amount {
		return governance.Proposal{}, fmt.Errorf("proposal amount %v outside (0, %v]: %w", amount, ms.Amount, errs.ErrInvalidInput)
	}

	prop, err := s.gov.CreateProposal(ctx, governance.Proposal{
		ProjectID:   projectID,
		MilestoneID: milestoneID,
		Amount:      amount,
	})
	if err != nil {
		return governance.Proposal{}, err
	}

	s.log.WithField("project_id", projectID).WithField("proposal_id", prop.ID).
		Infof("proposal created against milestone %s for %v", milestoneID, amount)
	return prop, nil
}

// Vote records one approval or rejection. Voting is unauthenticated and
// unlimited: tallies only, no caller tracking.
func (s *Service) Vote(ctx context.Context, projectID, proposalID string, approve bool) (governance.Proposal, error) {
	unlock := s.locks.Lock(projectID)
	defer unlock()

	prop, err := s.gov.GetProposal(ctx, proposalID)
	if err != nil {
		return governance.Proposal{}, err
	}
	if prop.ProjectID != projectID {
		return governance.Proposal{}, fmt.Errorf("proposal %s does not belong to project %s: %w", proposalID, projectID, errs.ErrNotFound)
	}
	if prop.Released {
		return governance.Proposal{}, fmt.Errorf("proposal %s: %w", proposalID, errs.ErrAlreadyReleased)
	}

	if approve {
		prop.Approvals++
	} else {
		prop.Rejections++
	}
	return s.gov.UpdateProposal(ctx, prop)
}

// Release moves the approved amount out of the project's reserve, capped at
// what the reserve actually holds, and marks proposal and milestone terminal.
// The cap flag is re-derived, so a release can reopen a launched project.
func (s *Service) Release(ctx context.Context, projectID, callerID, proposalID string) (ReleaseResult, error) {
	unlock := s.locks.Lock(projectID)
	defer unlock()

	proj, err := s.requireFounder(ctx, projectID, callerID)
	if err != nil {
		return ReleaseResult{}, err
	}

	prop, err := s.gov.GetProposal(ctx, proposalID)
	if err != nil {
		return ReleaseResult{}, err
	}
	if prop.ProjectID != projectID {
		return ReleaseResult{}, fmt.Errorf("proposal %s does not belong to project %s: %w", proposalID, projectID, errs.ErrNotFound)
	}
	if prop.Released {
		return ReleaseResult{}, fmt.Errorf("proposal %s: %w", proposalID, errs.ErrAlreadyReleased)
	}

	ms, err := s.gov.GetMilestone(ctx, prop.MilestoneID)
	if err != nil {
		return ReleaseResult{}, err
	}
	if ms.Status == governance.MilestoneReleased {
		return ReleaseResult{}, fmt.Errorf("milestone %s: %w", ms.ID, errs.ErrAlreadyReleased)
	}

	if !prop.Approved() {
		return ReleaseResult{}, fmt.Errorf("proposal %s with %d approvals, %d rejections: %w",
			proposalID, prop.Approvals, prop.Rejections, errs.ErrNotApproved)
	}

	moved := prop.Amount
	if moved > proj.Reserve {
		moved = proj.Reserve
	}
	proj.Reserve -= moved
	if proj.Reserve < 0 {
		proj.Reserve = 0
	}
	proj.CapReached = proj.Reserve >= proj.FundingGoal

	proj, err = s.projects.UpdateProject(ctx, proj)
	if err != nil {
		return ReleaseResult{}, err
	}

	prop.Released = true
	prop, err = s.gov.UpdateProposal(ctx, prop)
	if err != nil {
		return ReleaseResult{}, err
	}

	ms.Status = governance.MilestoneReleased
	ms, err = s.gov.UpdateMilestone(ctx, ms)
	if err != nil {
		return ReleaseResult{}, err
	}

	s.log.WithField("project_id", projectID).WithField("proposal_id", proposalID).
		Infof("released %v from reserve, %v remaining", moved, proj.Reserve)

	s.publish(events.Event{
		Type:      events.TypeProposalReleased,
		ProjectID: projectID,
		Actor:     callerID,
		Amount:    moved,
		Supply:    proj.Supply,
		Reserve:   proj.Reserve,
	})
	return ReleaseResult{Project: proj, Proposal: prop, Milestone: ms, Moved: moved}, nil
}

// ListMilestones returns the project's milestones.
func (s *Service) ListMilestones(ctx context.Context, projectID string) ([]governance.Milestone, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.gov.ListMilestones(ctx, projectID)
}

// ListProposals returns the project's proposals.
func (s *Service) ListProposals(ctx context.Context, projectID string) ([]governance.Proposal, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.gov.ListProposals(ctx, projectID)
}

// GetProposal returns one proposal scoped to the project.
func (s *Service) GetProposal(ctx context.Context, projectID, proposalID string) (governance.Proposal, error) {
	prop, err := s.gov.GetProposal(ctx, proposalID)
	if err != nil {
		return governance.Proposal{}, err
	}
	if prop.ProjectID != projectID {
		return governance.Proposal{}, fmt.Errorf("proposal %s does not belong to project %s: %w", proposalID, projectID, errs.ErrNotFound)
	}
	return prop, nil
}

func (s *Service) publish(event events.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}
