package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/curvelaunch/launchpad/internal/app/domain/governance"
	"github.com/curvelaunch/launchpad/internal/app/domain/holding"
	"github.com/curvelaunch/launchpad/internal/app/domain/offer"
	"github.com/curvelaunch/launchpad/internal/app/domain/project"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is the default backend: engine state lives only as
// long as the process.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	projects   map[string]project.Project
	projectIDs []string
	holdings   map[string]holding.Holding // key: userID + "\x00" + projectID
	offers       map[string]offer.Offer
	offerIDs     map[string][]string // projectID -> offer ids in creation order
	milestones   map[string]governance.Milestone
	milestoneIDs map[string][]string
	proposals    map[string]governance.Proposal
	proposalIDs  map[string][]string
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.HoldingStore = (*Store)(nil)
var _ storage.OfferStore = (*Store)(nil)
var _ storage.GovernanceStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:     1,
		projects:   make(map[string]project.Project),
		holdings:   make(map[string]holding.Holding),
		offers:       make(map[string]offer.Offer),
		offerIDs:     make(map[string][]string),
		milestones:   make(map[string]governance.Milestone),
		milestoneIDs: make(map[string][]string),
		proposals:    make(map[string]governance.Proposal),
		proposalIDs:  make(map[string][]string),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func holdingKey(userID, projectID string) string {
	return userID + "\x00" + projectID
}

// ProjectStore implementation ---------------------------------------------

func (s *Store) CreateProject(_ context.Context, proj project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if proj.ID == "" {
		proj.ID = s.nextIDLocked()
	} else if _, exists := s.projects[proj.ID]; exists {
		return project.Project{}, fmt.Errorf("project %s already exists", proj.ID)
	}

	now := time.Now().UTC()
	proj.CreatedAt = now
	proj.UpdatedAt = now

	s.projects[proj.ID] = proj
	s.projectIDs = append(s.projectIDs, proj.ID)
	return proj, nil
}

func (s *Store) UpdateProject(_ context.Context, proj project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.projects[proj.ID]
	if !ok {
		return project.Project{}, fmt.Errorf("project %s: %w", proj.ID, errs.ErrNotFound)
	}

	proj.CreatedAt = original.CreatedAt
	proj.UpdatedAt = time.Now().UTC()

	s.projects[proj.ID] = proj
	return proj, nil
}

func (s *Store) GetProject(_ context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proj, ok := s.projects[id]
	if !ok {
		return project.Project{}, fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	return proj, nil
}

func (s *Store) ListProjects(_ context.Context) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]project.Project, 0, len(s.projectIDs))
	for _, id := range s.projectIDs {
		result = append(result, s.projects[id])
	}
	return result, nil
}

// HoldingStore implementation ----------------------------------------------

func (s *Store) AdjustHolding(_ context.Context, userID, projectID string, delta int64) (holding.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := holdingKey(userID, projectID)
	now := time.Now().UTC()

	h, ok := s.holdings[key]
	if !ok {
		h = holding.Holding{UserID: userID, ProjectID: projectID, CreatedAt: now}
	}
	if h.Balance+delta < 0 {
		return holding.Holding{}, fmt.Errorf("holding %s/%s balance %d, delta %d: %w",
			userID, projectID, h.Balance, delta, errs.ErrInsufficientBalance)
	}
	h.Balance += delta
	h.UpdatedAt = now

	s.holdings[key] = h
	return h, nil
}

func (s *Store) GetHolding(_ context.Context, userID, projectID string) (holding.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if h, ok := s.holdings[holdingKey(userID, projectID)]; ok {
		return h, nil
	}
	return holding.Holding{UserID: userID, ProjectID: projectID}, nil
}

func (s *Store) ListHoldingsByUser(_ context.Context, userID string) ([]holding.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]holding.Holding, 0)
	for _, h := range s.holdings {
		if h.UserID == userID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProjectID < result[j].ProjectID })
	return result, nil
}

func (s *Store) ListHoldingsByProject(_ context.Context, projectID string) ([]holding.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]holding.Holding, 0)
	for _, h := range s.holdings {
		if h.ProjectID == projectID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// OfferStore implementation ------------------------------------------------

func (s *Store) CreateOffer(_ context.Context, off offer.Offer) (offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if off.ID == "" {
		off.ID = s.nextIDLocked()
	} else if _, exists := s.offers[off.ID]; exists {
		return offer.Offer{}, fmt.Errorf("offer %s already exists", off.ID)
	}

	now := time.Now().UTC()
	off.CreatedAt = now
	off.UpdatedAt = now

	s.offers[off.ID] = off
	s.offerIDs[off.ProjectID] = append(s.offerIDs[off.ProjectID], off.ID)
	return off, nil
}

func (s *Store) UpdateOffer(_ context.Context, off offer.Offer) (offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.offers[off.ID]
	if !ok {
		return offer.Offer{}, fmt.Errorf("offer %s: %w", off.ID, errs.ErrNotFound)
	}

	off.CreatedAt = original.CreatedAt
	off.UpdatedAt = time.Now().UTC()

	s.offers[off.ID] = off
	return off, nil
}

func (s *Store) GetOffer(_ context.Context, id string) (offer.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	off, ok := s.offers[id]
	if !ok {
		return offer.Offer{}, fmt.Errorf("offer %s: %w", id, errs.ErrNotFound)
	}
	return off, nil
}

func (s *Store) ListOffers(_ context.Context, projectID string) ([]offer.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.offerIDs[projectID]
	result := make([]offer.Offer, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.offers[id])
	}
	return result, nil
}

// GovernanceStore implementation -------------------------------------------

func (s *Store) CreateMilestone(_ context.Context, ms governance.Milestone) (governance.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ms.ID == "" {
		ms.ID = s.nextIDLocked()
	} else if _, exists := s.milestones[ms.ID]; exists {
		return governance.Milestone{}, fmt.Errorf("milestone %s already exists", ms.ID)
	}

	now := time.Now().UTC()
	ms.CreatedAt = now
	ms.UpdatedAt = now

	s.milestones[ms.ID] = ms
	s.milestoneIDs[ms.ProjectID] = append(s.milestoneIDs[ms.ProjectID], ms.ID)
	return ms, nil
}

func (s *Store) UpdateMilestone(_ context.Context, ms governance.Milestone) (governance.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.milestones[ms.ID]
	if !ok {
		return governance.Milestone{}, fmt.Errorf("milestone %s: %w", ms.ID, errs.ErrNotFound)
	}

	ms.CreatedAt = original.CreatedAt
	ms.UpdatedAt = time.Now().UTC()

	s.milestones[ms.ID] = ms
	return ms, nil
}

func (s *Store) GetMilestone(_ context.Context, id string) (governance.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, ok := s.milestones[id]
	if !ok {
		return governance.Milestone{}, fmt.Errorf("milestone %s: %w", id, errs.ErrNotFound)
	}
	return ms, nil
}

func (s *Store) ListMilestones(_ context.Context, projectID string) ([]governance.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.milestoneIDs[projectID]
	result := make([]governance.Milestone, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.milestones[id])
	}
	return result, nil
}

func (s *Store) CreateProposal(_ context.Context, prop governance.Proposal) (governance.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prop.ID == "" {
		prop.ID = s.nextIDLocked()
	} else if _, exists := s.proposals[prop.ID]; exists {
		return governance.Proposal{}, fmt.Errorf("proposal %s already exists", prop.ID)
	}

	now := time.Now().UTC()
	prop.CreatedAt = now
	prop.UpdatedAt = now

	s.proposals[prop.ID] = prop
	s.proposalIDs[prop.ProjectID] = append(s.proposalIDs[prop.ProjectID], prop.ID)
	return prop, nil
}

func (s *Store) UpdateProposal(_ context.Context, prop governance.Proposal) (governance.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.proposals[prop.ID]
	if !ok {
		return governance.Proposal{}, fmt.Errorf("proposal %s: %w", prop.ID, errs.ErrNotFound)
	}

	prop.CreatedAt = original.CreatedAt
	prop.UpdatedAt = time.Now().UTC()

	s.proposals[prop.ID] = prop
	return prop, nil
}

func (s *Store) GetProposal(_ context.Context, id string) (governance.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prop, ok := s.proposals[id]
	if !ok {
		return governance.Proposal{}, fmt.Errorf("proposal %s: %w", id, errs.ErrNotFound)
	}
	return prop, nil
}

func (s *Store) ListProposals(_ context.Context, projectID string) ([]governance.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.proposalIDs[projectID]
	result := make([]governance.Proposal, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.proposals[id])
	}
	return result, nil
}
