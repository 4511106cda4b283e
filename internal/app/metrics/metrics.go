// Package metrics exposes prometheus instrumentation for the launchpad
// engine, fed by the event hub so services stay free of metrics plumbing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curvelaunch/launchpad/internal/app/events"
)

// Metrics owns the engine's prometheus collectors on a private registry so
// multiple applications can coexist in one process (tests in particular).
type Metrics struct {
	registry *prometheus.Registry

	projectsCreated prometheus.Counter
	buys            prometheus.Counter
	sells           prometheus.Counter
	offersCreated   prometheus.Counter
	offersFilled    prometheus.Counter
	releases        prometheus.Counter
	tokensMinted    prometheus.Counter
	tokensBurned    prometheus.Counter

	supply  *prometheus.GaugeVec
	reserve *prometheus.GaugeVec
}

// New creates and registers the engine collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		projectsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_projects_created_total",
			Help: "Total number of projects registered.",
		}),
		buys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_buys_total",
			Help: "Total number of successful curve buys.",
		}),
		sells: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_sells_total",
			Help: "Total number of successful curve sells.",
		}),
		offersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_offers_created_total",
			Help: "Total number of sell offers listed.",
		}),
		offersFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_offer_fills_total",
			Help: "Total number of offer fills.",
		}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_releases_total",
			Help: "Total number of milestone fund releases.",
		}),
		tokensMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_tokens_minted_total",
			Help: "Total tokens minted through buys and founder allocations.",
		}),
		tokensBurned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_tokens_burned_total",
			Help: "Total tokens burned through sells.",
		}),
		supply: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "launchpad_project_supply",
			Help: "Current token supply per project.",
		}, []string{"project_id"}),
		reserve: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "launchpad_project_reserve",
			Help: "Current fund reserve per project.",
		}, []string{"project_id"}),
	}

	m.registry.MustRegister(
		m.projectsCreated, m.buys, m.sells,
		m.offersCreated, m.offersFilled, m.releases,
		m.tokensMinted, m.tokensBurned,
		m.supply, m.reserve,
	)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Record updates collectors from one engine event.
func (m *Metrics) Record(event events.Event) {
	switch event.Type {
	case events.TypeProjectCreated:
		m.projectsCreated.Inc()
		m.tokensMinted.Add(float64(event.Tokens))
	case events.TypeProjectBought:
		m.buys.Inc()
		m.tokensMinted.Add(float64(event.Tokens))
	case events.TypeProjectSold:
		m.sells.Inc()
		m.tokensBurned.Add(float64(event.Tokens))
	case events.TypeOfferCreated:
		m.offersCreated.Inc()
	case events.TypeOfferFilled:
		m.offersFilled.Inc()
	case events.TypeProposalReleased:
		m.releases.Inc()
	}

	if event.ProjectID != "" {
		m.supply.WithLabelValues(event.ProjectID).Set(float64(event.Supply))
		m.reserve.WithLabelValues(event.ProjectID).Set(event.Reserve)
	}
}
