// Package ledger is the authoritative token balance ledger. Every balance
// mutation in the engine funnels through Credit and Debit; no other component
// writes a holding directly.
package ledger

import (
	"context"
	"fmt"

	"github.com/curvelaunch/launchpad/internal/app/domain/holding"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/storage"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

// Service exposes balance credits, debits, and reads over a HoldingStore.
type Service struct {
	holdings storage.HoldingStore
	log      *logger.Logger
}

// New creates a ledger service.
func New(holdings storage.HoldingStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ledger")
	}
	return &Service{holdings: holdings, log: log}
}

func validatePair(userID, projectID string) error {
	if userID == "" || projectID == "" {
		return fmt.Errorf("user and project ids are required: %w", errs.ErrInvalidInput)
	}
	return nil
}

// Credit adds tokens to the user's balance, creating the holding on first
// credit. Tokens must be positive.
func (s *Service) Credit(ctx context.Context, userID, projectID string, tokens int64) (holding.Holding, error) {
	if err := validatePair(userID, projectID); err != nil {
		return holding.Holding{}, err
	}
	if tokens <= 0 {
		return holding.Holding{}, fmt.Errorf("credit of %d tokens: %w", tokens, errs.ErrInvalidAmount)
	}

	h, err := s.holdings.AdjustHolding(ctx, userID, projectID, tokens)
	if err != nil {
		return holding.Holding{}, err
	}

	s.log.WithField("user_id", userID).WithField("project_id", projectID).
		Debugf("credited %d tokens, balance %d", tokens, h.Balance)
	return h, nil
}

// Debit removes tokens from the user's balance. The balance check and the
// write are a single atomic step in the store.
func (s *Service) Debit(ctx context.Context, userID, projectID string, tokens int64) (holding.Holding, error) {
	if err := validatePair(userID, projectID); err != nil {
		return holding.Holding{}, err
	}
	if tokens <= 0 {
		return holding.Holding{}, fmt.Errorf("debit of %d tokens: %w", tokens, errs.ErrInvalidAmount)
	}

	h, err := s.holdings.AdjustHolding(ctx, userID, projectID, -tokens)
	if err != nil {
		return holding.Holding{}, err
	}

	s.log.WithField("user_id", userID).WithField("project_id", projectID).
		Debugf("debited %d tokens, balance %d", tokens, h.Balance)
	return h, nil
}

// Balance returns the user's balance in the project, zero if the pair has
// never been credited.
func (s *Service) Balance(ctx context.Context, userID, projectID string) (int64, error) {
	if err := validatePair(userID, projectID); err != nil {
		return 0, err
	}
	h, err := s.holdings.GetHolding(ctx, userID, projectID)
	if err != nil {
		return 0, err
	}
	return h.Balance, nil
}

// ListByUser returns the user's holdings across projects.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]holding.Holding, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", errs.ErrInvalidInput)
	}
	return s.holdings.ListHoldingsByUser(ctx, userID)
}

// ListByProject returns every holding in the project.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]holding.Holding, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required: %w", errs.ErrInvalidInput)
	}
	return s.holdings.ListHoldingsByProject(ctx, projectID)
}
