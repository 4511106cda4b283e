package offers

import (
	"context"
	"errors"
	"testing"

	"github.com/curvelaunch/launchpad/internal/app/domain/offer"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/events"
	"github.com/curvelaunch/launchpad/internal/app/locks"
	"github.com/curvelaunch/launchpad/internal/app/services/ledger"
	"github.com/curvelaunch/launchpad/internal/app/services/projects"
	"github.com/curvelaunch/launchpad/internal/app/storage"
	"github.com/curvelaunch/launchpad/internal/app/storage/memory"
)

type fixture struct {
	store    *memory.Store
	ledger   *ledger.Service
	projects *projects.Service
	svc      *Service
}

func newFixture() *fixture {
	store := memory.New()
	ledgerSvc := ledger.New(store, nil)
	keyed := locks.New()
	hub := events.NewHub(64)
	return &fixture{
		store:    store,
		ledger:   ledgerSvc,
		projects: projects.New(store, ledgerSvc, keyed, hub, projects.Config{}, nil),
		svc:      New(store, store, ledgerSvc, keyed, hub, nil),
	}
}

// seedProject creates a project and buys the seller some tokens.
func (f *fixture) seedProject(t *testing.T, seller string, funds float64) (string, int64) {
	t.Helper()
	ctx := context.Background()

	proj, err := f.projects.Create(ctx, "founder", projects.CreateInput{Name: "Solar Kiln"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	_, tokens, err := f.projects.Buy(ctx, proj.ID, seller, funds)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	return proj.ID, tokens
}

func TestCreateEscrowsSellerTokens(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	projectID, _ := f.seedProject(t, "seller", 10)

	off, err := f.svc.Create(ctx, projectID, "seller", 0.05, 5)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if off.Status != offer.StatusOpen {
		t.Fatalf("expected open offer, got %s", off.Status)
	}
	if off.Amount != 5 {
		t.Fatalf("expected 5 escrowed, got %d", off.Amount)
	}

	balance, err := f.ledger.Balance(ctx, "seller", projectID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 285 {
		t.Fatalf("escrow must debit the seller, expected 285, got %d", balance)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	projectID, _ := f.seedProject(t, "seller", 10)

	if _, err := f.svc.Create(ctx, projectID, "seller", 0, 5); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("zero price: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := f.svc.Create(ctx, projectID, "seller", 0.05, 0); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := f.svc.Create(ctx, projectID, "seller", 0.05, 10000); !errors.Is(err, errs.ErrInsufficientBalance) {
		t.Fatalf("oversized: expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := f.svc.Create(ctx, "missing", "seller", 0.05, 1); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing project: expected ErrNotFound, got %v", err)
	}
}

func TestTwoFillsCloseTheOffer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	projectID, _ := f.seedProject(t, "seller", 10)

	off, err := f.svc.Create(ctx, projectID, "seller", 0.05, 5)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	sellerBefore, _ := f.ledger.Balance(ctx, "seller", projectID)

	off, err = f.svc.Fill(ctx, projectID, off.ID, "buyer1", 2)
	if err != nil {
		t.Fatalf("first fill: %v", err)
	}
	if off.Amount != 3 || off.Status != offer.StatusOpen {
		t.Fatalf("after first fill: %+v", off)
	}

	off, err = f.svc.Fill(ctx, projectID, off.ID, "buyer2", 3)
	if err != nil {
		t.Fatalf("second fill: %v", err)
	}
	if off.Amount != 0 || off.Status != offer.StatusFilled {
		t.Fatalf("offer should be filled, got %+v", off)
	}

	b1, _ := f.ledger.Balance(ctx, "buyer1", projectID)
	b2, _ := f.ledger.Balance(ctx, "buyer2", projectID)
	sellerAfter, _ := f.ledger.Balance(ctx, "seller", projectID)
	if b1 != 2 || b2 != 3 {
		t.Fatalf("buyers should hold 2 and 3, got %d and %d", b1, b2)
	}
	if sellerAfter != sellerBefore {
		t.Fatalf("fills must not touch the seller again, %d != %d", sellerAfter, sellerBefore)
	}

	if _, err := f.svc.Fill(ctx, projectID, off.ID, "buyer3", 1); !errors.Is(err, errs.ErrOfferNotOpen) {
		t.Fatalf("filled offer: expected ErrOfferNotOpen, got %v", err)
	}
}

func TestFillClampsToEscrow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	projectID, _ := f.seedProject(t, "seller", 10)

	off, err := f.svc.Create(ctx, projectID, "seller", 0.05, 5)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	off, err = f.svc.Fill(ctx, projectID, off.ID, "buyer", 50)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if off.Status != offer.StatusFilled {
		t.Fatalf("clamped fill should drain the offer, got %+v", off)
	}

	balance, _ := f.ledger.Balance(ctx, "buyer", projectID)
	if balance != 5 {
		t.Fatalf("buyer must get only the escrowed 5, got %d", balance)
	}
}

func TestFillRejectsBadInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	projectID, _ := f.seedProject(t, "seller", 10)

	off, err := f.svc.Create(ctx, projectID, "seller", 0.05, 5)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	if _, err := f.svc.Fill(ctx, projectID, off.ID, "buyer", 0); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("zero request: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := f.svc.Fill(ctx, projectID, off.ID, "buyer", -4); !errors.Is(err, errs.ErrInvalidAmount) {
		t.Fatalf("negative request: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := f.svc.Fill(ctx, projectID, "missing", "buyer", 1); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing offer: expected ErrNotFound, got %v", err)
	}

	// An offer from another project must look like it does not exist.
	other, err := f.projects.Create(ctx, "founder", projects.CreateInput{Name: "Other"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := f.svc.Fill(ctx, other.ID, off.ID, "buyer", 1); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("cross-project fill: expected ErrNotFound, got %v", err)
	}
}

// flakyOfferStore fails a number of UpdateOffer calls, then delegates.
type flakyOfferStore struct {
	storage.OfferStore
	failures int
}

func (f *flakyOfferStore) UpdateOffer(ctx context.Context, off offer.Offer) (offer.Offer, error) {
	if f.failures > 0 {
		f.failures--
		return offer.Offer{}, errors.New("storage unavailable")
	}
	return f.OfferStore.UpdateOffer(ctx, off)
}

func TestFillRevertsCreditWhenOfferUpdateFails(t *testing.T) {
	store := memory.New()
	ledgerSvc := ledger.New(store, nil)
	keyed := locks.New()
	hub := events.NewHub(64)
	projSvc := projects.New(store, ledgerSvc, keyed, hub, projects.Config{}, nil)
	flaky := &flakyOfferStore{OfferStore: store}
	svc := New(store, flaky, ledgerSvc, keyed, hub, nil)
	ctx := context.Background()

	proj, err := projSvc.Create(ctx, "founder", projects.CreateInput{Name: "Solar Kiln"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, _, err := projSvc.Buy(ctx, proj.ID, "seller", 10); err != nil {
		t.Fatalf("buy: %v", err)
	}
	off, err := svc.Create(ctx, proj.ID, "seller", 0.05, 5)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	flaky.failures = 1
	if _, err := svc.Fill(ctx, proj.ID, off.ID, "buyer", 2); err == nil {
		t.Fatal("fill should surface the storage failure")
	}

	balance, err := ledgerSvc.Balance(ctx, "buyer", proj.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("failed fill must not leave tokens with the buyer, got %d", balance)
	}
	stored, err := store.GetOffer(ctx, off.ID)
	if err != nil {
		t.Fatalf("get offer: %v", err)
	}
	if stored.Amount != 5 || stored.Status != offer.StatusOpen {
		t.Fatalf("failed fill must not touch the offer, got %+v", stored)
	}

	// A retry against healthy storage proceeds normally.
	filled, err := svc.Fill(ctx, proj.ID, off.ID, "buyer", 2)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if filled.Amount != 3 {
		t.Fatalf("retry should leave 3 escrowed, got %d", filled.Amount)
	}
}

func TestTokensConservedAcrossOfferLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	projectID, _ := f.seedProject(t, "seller", 10)

	off, err := f.svc.Create(ctx, projectID, "seller", 0.05, 40)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if _, err := f.svc.Fill(ctx, projectID, off.ID, "buyer", 15); err != nil {
		t.Fatalf("fill: %v", err)
	}

	proj, err := f.projects.Get(ctx, projectID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}

	holdings, err := f.ledger.ListByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("list holdings: %v", err)
	}
	var total int64
	for _, h := range holdings {
		total += h.Balance
	}

	open, err := f.svc.List(ctx, projectID)
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	for _, o := range open {
		if o.Status == offer.StatusOpen {
			total += o.Amount
		}
	}

	if total != proj.Supply {
		t.Fatalf("holdings plus escrow %d must equal supply %d", total, proj.Supply)
	}
}
