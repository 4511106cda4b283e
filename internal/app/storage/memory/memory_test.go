package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/curvelaunch/launchpad/internal/app/domain/governance"
	"github.com/curvelaunch/launchpad/internal/app/domain/project"
	"github.com/curvelaunch/launchpad/internal/app/errs"
)

func TestAdjustHolding(t *testing.T) {
	store := New()
	ctx := context.Background()

	h, err := store.AdjustHolding(ctx, "alice", "p1", 10)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if h.Balance != 10 {
		t.Fatalf("unexpected balance: %d", h.Balance)
	}

	if _, err := store.AdjustHolding(ctx, "alice", "p1", -11); !errors.Is(err, errs.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	h, err = store.AdjustHolding(ctx, "alice", "p1", -10)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if h.Balance != 0 {
		t.Fatalf("balance should be zero, got %d", h.Balance)
	}

	// Zero balances are kept, not pruned.
	h, err = store.GetHolding(ctx, "alice", "p1")
	if err != nil {
		t.Fatalf("get holding: %v", err)
	}
	if h.Balance != 0 || h.CreatedAt.IsZero() {
		t.Fatalf("zero-balance holding should persist: %+v", h)
	}
}

func TestAdjustHoldingNeverCreatesNegative(t *testing.T) {
	store := New()
	if _, err := store.AdjustHolding(context.Background(), "bob", "p1", -1); !errors.Is(err, errs.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance for fresh holding, got %v", err)
	}
}

func TestGetHoldingAbsentReturnsZero(t *testing.T) {
	store := New()
	h, err := store.GetHolding(context.Background(), "nobody", "p1")
	if err != nil {
		t.Fatalf("get holding: %v", err)
	}
	if h.Balance != 0 {
		t.Fatalf("absent holding should read as zero, got %d", h.Balance)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	created, err := store.CreateProject(ctx, project.Project{FounderID: "alice", Name: "widget", Supply: 100, FundingGoal: 100000})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("project not initialised: %+v", created)
	}

	created.Reserve = 10
	updated, err := store.UpdateProject(ctx, created)
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if updated.Reserve != 10 {
		t.Fatalf("reserve not updated: %v", updated.Reserve)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must be preserved on update")
	}

	if _, err := store.GetProject(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected project list: %+v", list)
	}
}

// The sequential IDs pass "9" after nine entities, so a lexical sort would
// shuffle the lists. Creation order must hold regardless of ID shape.
func TestGovernanceListsKeepCreationOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	var msIDs, propIDs []string
	for i := 0; i < 12; i++ {
		ms, err := store.CreateMilestone(ctx, governance.Milestone{ProjectID: "p1", Title: "m", Amount: 1})
		if err != nil {
			t.Fatalf("create milestone: %v", err)
		}
		msIDs = append(msIDs, ms.ID)

		prop, err := store.CreateProposal(ctx, governance.Proposal{ProjectID: "p1", MilestoneID: ms.ID, Amount: 1})
		if err != nil {
			t.Fatalf("create proposal: %v", err)
		}
		propIDs = append(propIDs, prop.ID)
	}

	milestones, err := store.ListMilestones(ctx, "p1")
	if err != nil {
		t.Fatalf("list milestones: %v", err)
	}
	if len(milestones) != len(msIDs) {
		t.Fatalf("expected %d milestones, got %d", len(msIDs), len(milestones))
	}
	for i, ms := range milestones {
		if ms.ID != msIDs[i] {
			t.Fatalf("milestone %d out of creation order: got %s, want %s", i, ms.ID, msIDs[i])
		}
	}

	proposals, err := store.ListProposals(ctx, "p1")
	if err != nil {
		t.Fatalf("list proposals: %v", err)
	}
	if len(proposals) != len(propIDs) {
		t.Fatalf("expected %d proposals, got %d", len(propIDs), len(proposals))
	}
	for i, prop := range proposals {
		if prop.ID != propIDs[i] {
			t.Fatalf("proposal %d out of creation order: got %s, want %s", i, prop.ID, propIDs[i])
		}
	}
}

func TestListHoldings(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, p := range []string{"p2", "p1"} {
		if _, err := store.AdjustHolding(ctx, "alice", p, 5); err != nil {
			t.Fatalf("credit %s: %v", p, err)
		}
	}
	if _, err := store.AdjustHolding(ctx, "bob", "p1", 3); err != nil {
		t.Fatalf("credit bob: %v", err)
	}

	byUser, err := store.ListHoldingsByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 2 || byUser[0].ProjectID != "p1" || byUser[1].ProjectID != "p2" {
		t.Fatalf("unexpected user holdings: %+v", byUser)
	}

	byProject, err := store.ListHoldingsByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("list by project: %v", err)
	}
	if len(byProject) != 2 {
		t.Fatalf("unexpected project holdings: %+v", byProject)
	}
}
