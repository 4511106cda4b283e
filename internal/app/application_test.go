package app

import (
	"context"
	"testing"

	"github.com/curvelaunch/launchpad/internal/app/services/projects"
	"github.com/curvelaunch/launchpad/internal/config"
)

func TestApplicationLifecycle(t *testing.T) {
	application, err := New(Stores{}, nil, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := application.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestApplicationMemoryFallbackSharesOneStore(t *testing.T) {
	application, err := New(Stores{}, nil, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	ctx := context.Background()

	proj, err := application.Projects.Create(ctx, "founder", projects.CreateInput{Name: "Solar Kiln"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	// The founder allocation must be visible through the ledger, which
	// proves projects and holdings landed in the same fallback store.
	balance, err := application.Ledger.Balance(ctx, "founder", proj.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("expected the founder allocation, got %d", balance)
	}

	if _, err := application.Offers.Create(ctx, proj.ID, "founder", 0.05, 10); err != nil {
		t.Fatalf("create offer: %v", err)
	}
}

func TestApplicationHonorsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Funding.FounderAllocation = 25
	cfg.Funding.DefaultGoal = 500

	application, err := New(Stores{}, cfg, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	ctx := context.Background()

	proj, err := application.Projects.Create(ctx, "founder", projects.CreateInput{Name: "Solar Kiln"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if proj.Supply != 25 {
		t.Fatalf("expected configured allocation of 25, got %d", proj.Supply)
	}
	if proj.FundingGoal != 500 {
		t.Fatalf("expected configured goal of 500, got %v", proj.FundingGoal)
	}
}
