// Package httpapi maps the launchpad services onto a REST surface. The
// caller identity comes from the X-Caller-ID header and is passed through
// unverified; the engine treats it as opaque.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	app "github.com/curvelaunch/launchpad/internal/app"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/services/projects"
)

const callerHeader = "X-Caller-ID"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the core REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.healthz)
	mux.HandleFunc("/events", h.events)
	mux.HandleFunc("/events/ws", h.eventsWS)
	mux.Handle("/metrics", application.Metrics.Handler())
	mux.HandleFunc("/projects", h.projects)
	mux.HandleFunc("/projects/", h.projectResources)
	mux.HandleFunc("/users/", h.userResources)
	return mux
}

func caller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(callerHeader))
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	writeJSON(w, http.StatusOK, h.app.Hub.Recent(limit))
}

func (h *handler) projects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name        string  `json:"name"`
			Summary     string  `json:"summary"`
			Plan        string  `json:"plan"`
			VideoURL    string  `json:"video_url"`
			ResumeURL   string  `json:"resume_url"`
			TokenSymbol string  `json:"token_symbol"`
			FundingGoal float64 `json:"funding_goal"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		proj, err := h.app.Projects.Create(r.Context(), caller(r), projects.CreateInput{
			Name:        payload.Name,
			Summary:     payload.Summary,
			Plan:        payload.Plan,
			VideoURL:    payload.VideoURL,
			ResumeURL:   payload.ResumeURL,
			TokenSymbol: payload.TokenSymbol,
			FundingGoal: payload.FundingGoal,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, proj)

	case http.MethodGet:
		projects, err := h.app.Projects.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) projectResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/projects"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	projectID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		proj, err := h.app.Projects.Get(r.Context(), projectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, proj)
		return
	}

	// buy, sell, quote, holdings, and milestones take no further path
	// segments; anything trailing is not a route.
	switch parts[1] {
	case "buy", "sell", "quote", "holdings", "milestones":
		if len(parts) != 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	}

	switch parts[1] {
	case "buy":
		h.projectBuy(w, r, projectID)
	case "sell":
		h.projectSell(w, r, projectID)
	case "quote":
		h.projectQuote(w, r, projectID)
	case "holdings":
		h.projectHoldings(w, r, projectID)
	case "offers":
		h.projectOffers(w, r, projectID, parts[2:])
	case "milestones":
		h.projectMilestones(w, r, projectID)
	case "proposals":
		h.projectProposals(w, r, projectID, parts[2:])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) projectBuy(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Funds float64 `json:"funds"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	proj, tokens, err := h.app.Projects.Buy(r.Context(), projectID, caller(r), payload.Funds)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project": proj,
		"tokens":  tokens,
	})
}

func (h *handler) projectSell(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Tokens int64 `json:"tokens"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	proj, proceeds, err := h.app.Projects.Sell(r.Context(), projectID, caller(r), payload.Tokens)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":  proj,
		"proceeds": proceeds,
	})
}

func (h *handler) projectQuote(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	funds, err := strconv.ParseFloat(r.URL.Query().Get("funds"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("funds query parameter is required"))
		return
	}

	tokens, err := h.app.Projects.Quote(r.Context(), projectID, funds)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"tokens": tokens})
}

func (h *handler) projectHoldings(w http.ResponseWriter, r *http.Request, projectID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, err := h.app.Projects.Get(r.Context(), projectID); err != nil {
		writeDomainError(w, err)
		return
	}
	holdings, err := h.app.Ledger.ListByProject(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

func (h *handler) projectOffers(w http.ResponseWriter, r *http.Request, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodPost:
			var payload struct {
				PricePerToken float64 `json:"price_per_token"`
				Amount        int64   `json:"amount"`
			}
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}

			off, err := h.app.Offers.Create(r.Context(), projectID, caller(r), payload.PricePerToken, payload.Amount)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, off)

		case http.MethodGet:
			offers, err := h.app.Offers.List(r.Context(), projectID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, offers)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if len(rest) == 2 && rest[1] == "fill" && r.Method == http.MethodPost {
		var payload struct {
			Amount int64 `json:"amount"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		off, err := h.app.Offers.Fill(r.Context(), projectID, rest[0], caller(r), payload.Amount)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, off)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *handler) projectMilestones(w http.ResponseWriter, r *http.Request, projectID string) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			Amount      float64 `json:"amount"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		ms, err := h.app.Governance.CreateMilestone(r.Context(), projectID, caller(r),
			payload.Title, payload.Description, payload.Amount)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ms)

	case http.MethodGet:
		milestones, err := h.app.Governance.ListMilestones(r.Context(), projectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, milestones)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) projectProposals(w http.ResponseWriter, r *http.Request, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodPost:
			var payload struct {
				MilestoneID string  `json:"milestone_id"`
				Amount      float64 `json:"amount"`
			}
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}

			prop, err := h.app.Governance.CreateProposal(r.Context(), projectID, caller(r),
				payload.MilestoneID, payload.Amount)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, prop)

		case http.MethodGet:
			proposals, err := h.app.Governance.ListProposals(r.Context(), projectID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, proposals)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if len(rest) != 2 || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	proposalID := rest[0]

	switch rest[1] {
	case "vote":
		var payload struct {
			Approve bool `json:"approve"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		prop, err := h.app.Governance.Vote(r.Context(), projectID, proposalID, payload.Approve)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prop)

	case "release":
		result, err := h.app.Governance.Release(r.Context(), projectID, caller(r), proposalID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) userResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/users"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "holdings" || r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	holdings, err := h.app.Ledger.ListByUser(r.Context(), parts[0])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

// writeDomainError maps the engine's sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrQuoteTooSmall):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrInsufficientBalance),
		errors.Is(err, errs.ErrCapReached),
		errors.Is(err, errs.ErrOfferNotOpen),
		errors.Is(err, errs.ErrAlreadyReleased),
		errors.Is(err, errs.ErrNotApproved):
		status = http.StatusConflict
	}
	writeError(w, status, err)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
