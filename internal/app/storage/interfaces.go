// Package storage defines the persistence interfaces for the launchpad
// engine. Implementations must return errs.ErrNotFound (wrapped) for missing
// entities and errs.ErrInsufficientBalance when a holding adjustment would
// go negative.
package storage

import (
	"context"

	"github.com/curvelaunch/launchpad/internal/app/domain/governance"
	"github.com/curvelaunch/launchpad/internal/app/domain/holding"
	"github.com/curvelaunch/launchpad/internal/app/domain/offer"
	"github.com/curvelaunch/launchpad/internal/app/domain/project"
)

// ProjectStore persists projects and their curve state.
type ProjectStore interface {
	CreateProject(ctx context.Context, proj project.Project) (project.Project, error)
	UpdateProject(ctx context.Context, proj project.Project) (project.Project, error)
	GetProject(ctx context.Context, id string) (project.Project, error)
	ListProjects(ctx context.Context) ([]project.Project, error)
}

// HoldingStore persists per-(user, project) token balances. AdjustHolding is
// the single mutation primitive: it applies delta atomically with the
// balance check, creating the holding lazily on first positive adjustment.
// GetHolding returns a zero-balance holding, not an error, when the pair has
// never been credited.
type HoldingStore interface {
	AdjustHolding(ctx context.Context, userID, projectID string, delta int64) (holding.Holding, error)
	GetHolding(ctx context.Context, userID, projectID string) (holding.Holding, error)
	ListHoldingsByUser(ctx context.Context, userID string) ([]holding.Holding, error)
	ListHoldingsByProject(ctx context.Context, projectID string) ([]holding.Holding, error)
}

// OfferStore persists sell offers and their escrowed amounts.
type OfferStore interface {
	CreateOffer(ctx context.Context, off offer.Offer) (offer.Offer, error)
	UpdateOffer(ctx context.Context, off offer.Offer) (offer.Offer, error)
	GetOffer(ctx context.Context, id string) (offer.Offer, error)
	ListOffers(ctx context.Context, projectID string) ([]offer.Offer, error)
}

// GovernanceStore persists milestones and withdrawal proposals.
type GovernanceStore interface {
	CreateMilestone(ctx context.Context, ms governance.Milestone) (governance.Milestone, error)
	UpdateMilestone(ctx context.Context, ms governance.Milestone) (governance.Milestone, error)
	GetMilestone(ctx context.Context, id string) (governance.Milestone, error)
	ListMilestones(ctx context.Context, projectID string) ([]governance.Milestone, error)

	CreateProposal(ctx context.Context, prop governance.Proposal) (governance.Proposal, error)
	UpdateProposal(ctx context.Context, prop governance.Proposal) (governance.Proposal, error)
	GetProposal(ctx context.Context, id string) (governance.Proposal, error)
	ListProposals(ctx context.Context, projectID string) ([]governance.Proposal, error)
}
