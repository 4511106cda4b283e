// Package app composes the launchpad tokenomics engine into a running
// application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── curve/              # Bonding curve pricing and quote walks
//	├── domain/             # Domain models (pure data structures)
//	│   ├── project/        # Projects and their curve state
//	│   ├── holding/        # Per-(user, project) balances
//	│   ├── offer/          # Escrowed sell offers
//	│   └── governance/     # Milestones and withdrawal proposals
//	├── errs/               # Sentinel error taxonomy
//	├── events/             # Best-effort change notification hub
//	├── locks/              # Per-project keyed mutex
//	├── metrics/            # Prometheus collectors and the hub observer
//	├── services/           # Business logic (ledger, projects, offers, governance)
//	├── storage/            # Store interfaces, memory and postgres backends
//	├── httpapi/            # REST adapter, websocket stream, middleware
//	└── system/             # Lifecycle manager
//
// # Responsibilities
//
// The app package wires stores into services, services into the HTTP
// adapter, and background observers into the lifecycle manager. Business
// rules live in internal/app/services; this package only composes them.
//
// Every mutating operation is an atomic transition on one project: the
// services acquire the project's keyed mutex before reading, and all balance
// mutation funnels through the ledger's atomic store primitive. Nil stores
// default to the in-memory backend, so tests and local runs need no setup.
package app
