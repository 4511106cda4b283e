// Package offers implements the escrow-based secondary market. Listing an
// offer moves the seller's tokens into the offer itself; fills hand escrowed
// tokens to buyers. No currency moves: the listed price is advisory.
package offers

import (
	"context"
	"fmt"

	"github.com/curvelaunch/launchpad/internal/app/domain/offer"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/events"
	"github.com/curvelaunch/launchpad/internal/app/locks"
	"github.com/curvelaunch/launchpad/internal/app/services/ledger"
	"github.com/curvelaunch/launchpad/internal/app/storage"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

// Service owns the per-project offer book.
type Service struct {
	projects storage.ProjectStore
	offers   storage.OfferStore
	ledger   *ledger.Service
	locks    *locks.KeyedMutex
	hub      *events.Hub
	log      *logger.Logger
}

// New creates an offer book service.
func New(projects storage.ProjectStore, offers storage.OfferStore, ledgerSvc *ledger.Service, keyed *locks.KeyedMutex, hub *events.Hub, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("offers")
	}
	return &Service{
		projects: projects,
		offers:   offers,
		ledger:   ledgerSvc,
		locks:    keyed,
		hub:      hub,
		log:      log,
	}
}

// Create lists amount tokens for sale, debiting them from the seller into
// escrow. There is no cancel operation: escrow is only recoverable through
// fills.
func (s *Service) Create(ctx context.Context, projectID, sellerID string, pricePerToken float64, amount int64) (offer.Offer, error) {
	if sellerID == "" {
		return offer.Offer{}, fmt.Errorf("seller id is required: %w", errs.ErrInvalidInput)
	}
	if pricePerToken <= 0 || amount <= 0 {
		return offer.Offer{}, fmt.Errorf("price %v, amount %d: %w", pricePerToken, amount, errs.ErrInvalidAmount)
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return offer.Offer{}, err
	}

	if _, err := s.ledger.Debit(ctx, sellerID, projectID, amount); err != nil {
		return offer.Offer{}, err
	}

	off, err := s.offers.CreateOffer(ctx, offer.Offer{
		ProjectID:     projectID,
		SellerID:      sellerID,
		PricePerToken: pricePerToken,
		Amount:        amount,
		Status:        offer.StatusOpen,
	})
	if err != nil {
		return offer.Offer{}, err
	}

	s.log.WithField("project_id", projectID).WithField("offer_id", off.ID).
		Infof("offer listed: %d tokens at %v by %s", amount, pricePerToken, sellerID)

	s.publish(events.Event{
		Type:      events.TypeOfferCreated,
		ProjectID: projectID,
		Actor:     sellerID,
		Tokens:    amount,
		Amount:    pricePerToken,
		Supply:    proj.Supply,
		Reserve:   proj.Reserve,
	})
	return off, nil
}

// Fill transfers up to requested escrowed tokens to the buyer. The take is
// clamped to what the offer still holds; the offer closes when it empties.
func (s *Service) Fill(ctx context.Context, projectID, offerID, buyerID string, requested int64) (offer.Offer, error) {
	if buyerID == "" {
		return offer.Offer{}, fmt.Errorf("buyer id is required: %w", errs.ErrInvalidInput)
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return offer.Offer{}, err
	}

	off, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return offer.Offer{}, err
	}
	if off.ProjectID != projectID {
		return offer.Offer{}, fmt.Errorf("offer %s does not belong to project %s: %w", offerID, projectID, errs.ErrNotFound)
	}
	if off.Status != offer.StatusOpen || off.Amount == 0 {
		return offer.Offer{}, fmt.Errorf("offer %s: %w", offerID, errs.ErrOfferNotOpen)
	}

	take := requested
	if take < 0 {
		take = 0
	}
	if take > off.Amount {
		take = off.Amount
	}
	if take == 0 {
		return offer.Offer{}, fmt.Errorf("fill of %d: %w", requested, errs.ErrInvalidAmount)
	}

	if _, err := s.ledger.Credit(ctx, buyerID, projectID, take); err != nil {
		return offer.Offer{}, err
	}

	off.Amount -= take
	if off.Amount == 0 {
		off.Status = offer.StatusFilled
	}

	off, err = s.offers.UpdateOffer(ctx, off)
	if err != nil {
		// Claw back the handed-out tokens so a failed fill leaves no
		// partial state. The project lock is still held, so the tokens
		// cannot have moved.
		if _, derr := s.ledger.Debit(ctx, buyerID, projectID, take); derr != nil {
			s.log.WithError(derr).WithField("offer_id", offerID).
				Errorf("revert credit of %d tokens after failed offer update", take)
		}
		return offer.Offer{}, err
	}

	s.log.WithField("project_id", projectID).WithField("offer_id", offerID).
		Infof("fill of %d tokens by %s, %d remaining", take, buyerID, off.Amount)

	s.publish(events.Event{
		Type:      events.TypeOfferFilled,
		ProjectID: projectID,
		Actor:     buyerID,
		Tokens:    take,
		Supply:    proj.Supply,
		Reserve:   proj.Reserve,
	})
	return off, nil
}

// List returns the project's offers in creation order.
func (s *Service) List(ctx context.Context, projectID string) ([]offer.Offer, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.offers.ListOffers(ctx, projectID)
}

func (s *Service) publish(event events.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}
