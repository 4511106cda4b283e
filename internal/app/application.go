package app

import (
	"context"
	"fmt"

	"github.com/curvelaunch/launchpad/internal/app/curve"
	"github.com/curvelaunch/launchpad/internal/app/events"
	"github.com/curvelaunch/launchpad/internal/app/locks"
	"github.com/curvelaunch/launchpad/internal/app/metrics"
	governancesvc "github.com/curvelaunch/launchpad/internal/app/services/governance"
	"github.com/curvelaunch/launchpad/internal/app/services/ledger"
	offerssvc "github.com/curvelaunch/launchpad/internal/app/services/offers"
	projectssvc "github.com/curvelaunch/launchpad/internal/app/services/projects"
	"github.com/curvelaunch/launchpad/internal/app/storage"
	"github.com/curvelaunch/launchpad/internal/app/storage/memory"
	"github.com/curvelaunch/launchpad/internal/app/system"
	"github.com/curvelaunch/launchpad/internal/config"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Projects   storage.ProjectStore
	Holdings   storage.HoldingStore
	Offers     storage.OfferStore
	Governance storage.GovernanceStore
}

// Application ties the launchpad services together and manages their
// lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Ledger     *ledger.Service
	Projects   *projectssvc.Service
	Offers     *offerssvc.Service
	Governance *governancesvc.Service
	Hub        *events.Hub
	Metrics    *metrics.Metrics
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if cfg == nil {
		cfg = config.Default()
	}

	mem := memory.New()
	if stores.Projects == nil {
		stores.Projects = mem
	}
	if stores.Holdings == nil {
		stores.Holdings = mem
	}
	if stores.Offers == nil {
		stores.Offers = mem
	}
	if stores.Governance == nil {
		stores.Governance = mem
	}

	manager := system.NewManager()
	keyed := locks.New()
	hub := events.NewHub(cfg.Events.BufferSize)
	mets := metrics.New()

	ledgerService := ledger.New(stores.Holdings, log)
	projectService := projectssvc.New(stores.Projects, ledgerService, keyed, hub, projectssvc.Config{
		Curve:             curve.New(cfg.Curve.BasePrice, cfg.Curve.Slope, cfg.Curve.MaxSteps),
		DefaultGoal:       cfg.Funding.DefaultGoal,
		FounderAllocation: cfg.Funding.FounderAllocation,
	}, log)
	offerService := offerssvc.New(stores.Projects, stores.Offers, ledgerService, keyed, hub, log)
	governanceService := governancesvc.New(stores.Projects, stores.Governance, keyed, hub, log)

	for _, name := range []string{"ledger", "projects", "offers", "governance"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	observer := metrics.NewObserver(mets, hub, log)
	if err := manager.Register(observer); err != nil {
		return nil, fmt.Errorf("register %s: %w", observer.Name(), err)
	}

	return &Application{
		manager:    manager,
		log:        log,
		Ledger:     ledgerService,
		Projects:   projectService,
		Offers:     offerService,
		Governance: governanceService,
		Hub:        hub,
		Metrics:    mets,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
