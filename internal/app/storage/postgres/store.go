// Package postgres implements the storage interfaces backed by PostgreSQL.
// It is opt-in via DATABASE_URL; the memory store remains the default.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/curvelaunch/launchpad/internal/app/domain/governance"
	"github.com/curvelaunch/launchpad/internal/app/domain/holding"
	"github.com/curvelaunch/launchpad/internal/app/domain/offer"
	"github.com/curvelaunch/launchpad/internal/app/domain/project"
	"github.com/curvelaunch/launchpad/internal/app/errs"
	"github.com/curvelaunch/launchpad/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.HoldingStore = (*Store)(nil)
var _ storage.OfferStore = (*Store)(nil)
var _ storage.GovernanceStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the launchpad tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS launchpad_projects (
			id TEXT PRIMARY KEY,
			founder_id TEXT NOT NULL,
			name TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			plan TEXT NOT NULL DEFAULT '',
			video_url TEXT NOT NULL DEFAULT '',
			resume_url TEXT NOT NULL DEFAULT '',
			token_symbol TEXT NOT NULL DEFAULT '',
			supply BIGINT NOT NULL DEFAULT 0,
			reserve DOUBLE PRECISION NOT NULL DEFAULT 0,
			funding_goal DOUBLE PRECISION NOT NULL,
			cap_reached BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS launchpad_holdings (
			user_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS launchpad_offers (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			seller_id TEXT NOT NULL,
			price_per_token DOUBLE PRECISION NOT NULL,
			amount BIGINT NOT NULL CHECK (amount >= 0),
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS launchpad_milestones (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS launchpad_proposals (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			milestone_id TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			approvals BIGINT NOT NULL DEFAULT 0,
			rejections BIGINT NOT NULL DEFAULT 0,
			released BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- ProjectStore -----------------------------------------------------------

func (s *Store) CreateProject(ctx context.Context, proj project.Project) (project.Project, error) {
	if proj.ID == "" {
		proj.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	proj.CreatedAt = now
	proj.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launchpad_projects
			(id, founder_id, name, summary, plan, video_url, resume_url,
			 token_symbol, supply, reserve, funding_goal, cap_reached,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, proj.ID, proj.FounderID, proj.Name, proj.Summary, proj.Plan,
		proj.VideoURL, proj.ResumeURL, proj.TokenSymbol, proj.Supply,
		proj.Reserve, proj.FundingGoal, proj.CapReached, proj.CreatedAt, proj.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	return proj, nil
}

func (s *Store) UpdateProject(ctx context.Context, proj project.Project) (project.Project, error) {
	proj.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE launchpad_projects
		SET founder_id = $2, name = $3, summary = $4, plan = $5,
			video_url = $6, resume_url = $7, token_symbol = $8,
			supply = $9, reserve = $10, funding_goal = $11,
			cap_reached = $12, updated_at = $13
		WHERE id = $1
	`, proj.ID, proj.FounderID, proj.Name, proj.Summary, proj.Plan,
		proj.VideoURL, proj.ResumeURL, proj.TokenSymbol, proj.Supply,
		proj.Reserve, proj.FundingGoal, proj.CapReached, proj.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return project.Project{}, fmt.Errorf("project %s: %w", proj.ID, errs.ErrNotFound)
	}
	return s.GetProject(ctx, proj.ID)
}

func (s *Store) GetProject(ctx context.Context, id string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, founder_id, name, summary, plan, video_url, resume_url,
			token_symbol, supply, reserve, funding_goal, cap_reached,
			created_at, updated_at
		FROM launchpad_projects
		WHERE id = $1
	`, id)

	var proj project.Project
	err := row.Scan(&proj.ID, &proj.FounderID, &proj.Name, &proj.Summary,
		&proj.Plan, &proj.VideoURL, &proj.ResumeURL, &proj.TokenSymbol,
		&proj.Supply, &proj.Reserve, &proj.FundingGoal, &proj.CapReached,
		&proj.CreatedAt, &proj.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return project.Project{}, err
	}
	return proj, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, founder_id, name, summary, plan, video_url, resume_url,
			token_symbol, supply, reserve, funding_goal, cap_reached,
			created_at, updated_at
		FROM launchpad_projects
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]project.Project, 0)
	for rows.Next() {
		var proj project.Project
		if err := rows.Scan(&proj.ID, &proj.FounderID, &proj.Name, &proj.Summary,
			&proj.Plan, &proj.VideoURL, &proj.ResumeURL, &proj.TokenSymbol,
			&proj.Supply, &proj.Reserve, &proj.FundingGoal, &proj.CapReached,
			&proj.CreatedAt, &proj.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, proj)
	}
	return result, rows.Err()
}

// --- HoldingStore -----------------------------------------------------------

// AdjustHolding applies delta atomically with the non-negative balance check.
// A guarded UPDATE carries the check; the INSERT path only ever runs for a
// positive delta on a missing row.
func (s *Store) AdjustHolding(ctx context.Context, userID, projectID string, delta int64) (holding.Holding, error) {
	now := time.Now().UTC()

	row := s.db.QueryRowContext(ctx, `
		UPDATE launchpad_holdings
		SET balance = balance + $3, updated_at = $4
		WHERE user_id = $1 AND project_id = $2 AND balance + $3 >= 0
		RETURNING user_id, project_id, balance, created_at, updated_at
	`, userID, projectID, delta, now)

	var h holding.Holding
	err := row.Scan(&h.UserID, &h.ProjectID, &h.Balance, &h.CreatedAt, &h.UpdatedAt)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return holding.Holding{}, err
	}

	// Either the row does not exist or the guard failed. Distinguish the
	// two so a blocked debit on an existing row reports the right error.
	existing, getErr := s.GetHolding(ctx, userID, projectID)
	if getErr != nil {
		return holding.Holding{}, getErr
	}
	if existing.Balance+delta < 0 {
		return holding.Holding{}, fmt.Errorf("holding %s/%s balance %d, delta %d: %w",
			userID, projectID, existing.Balance, delta, errs.ErrInsufficientBalance)
	}

	row = s.db.QueryRowContext(ctx, `
		INSERT INTO launchpad_holdings (user_id, project_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, project_id)
		DO UPDATE SET balance = launchpad_holdings.balance + $3, updated_at = $4
		WHERE launchpad_holdings.balance + $3 >= 0
		RETURNING user_id, project_id, balance, created_at, updated_at
	`, userID, projectID, delta, now)

	if err := row.Scan(&h.UserID, &h.ProjectID, &h.Balance, &h.CreatedAt, &h.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return holding.Holding{}, fmt.Errorf("holding %s/%s delta %d: %w",
				userID, projectID, delta, errs.ErrInsufficientBalance)
		}
		return holding.Holding{}, err
	}
	return h, nil
}

func (s *Store) GetHolding(ctx context.Context, userID, projectID string) (holding.Holding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, project_id, balance, created_at, updated_at
		FROM launchpad_holdings
		WHERE user_id = $1 AND project_id = $2
	`, userID, projectID)

	var h holding.Holding
	err := row.Scan(&h.UserID, &h.ProjectID, &h.Balance, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return holding.Holding{UserID: userID, ProjectID: projectID}, nil
	}
	if err != nil {
		return holding.Holding{}, err
	}
	return h, nil
}

func (s *Store) ListHoldingsByUser(ctx context.Context, userID string) ([]holding.Holding, error) {
	return s.listHoldings(ctx, `
		SELECT user_id, project_id, balance, created_at, updated_at
		FROM launchpad_holdings
		WHERE user_id = $1
		ORDER BY project_id
	`, userID)
}

func (s *Store) ListHoldingsByProject(ctx context.Context, projectID string) ([]holding.Holding, error) {
	return s.listHoldings(ctx, `
		SELECT user_id, project_id, balance, created_at, updated_at
		FROM launchpad_holdings
		WHERE project_id = $1
		ORDER BY user_id
	`, projectID)
}

func (s *Store) listHoldings(ctx context.Context, query, arg string) ([]holding.Holding, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]holding.Holding, 0)
	for rows.Next() {
		var h holding.Holding
		if err := rows.Scan(&h.UserID, &h.ProjectID, &h.Balance, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// --- OfferStore -------------------------------------------------------------

func (s *Store) CreateOffer(ctx context.Context, off offer.Offer) (offer.Offer, error) {
	if off.ID == "" {
		off.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	off.CreatedAt = now
	off.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launchpad_offers
			(id, project_id, seller_id, price_per_token, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, off.ID, off.ProjectID, off.SellerID, off.PricePerToken, off.Amount,
		off.Status, off.CreatedAt, off.UpdatedAt)
	if err != nil {
		return offer.Offer{}, err
	}
	return off, nil
}

func (s *Store) UpdateOffer(ctx context.Context, off offer.Offer) (offer.Offer, error) {
	off.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE launchpad_offers
		SET price_per_token = $2, amount = $3, status = $4, updated_at = $5
		WHERE id = $1
	`, off.ID, off.PricePerToken, off.Amount, off.Status, off.UpdatedAt)
	if err != nil {
		return offer.Offer{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return offer.Offer{}, fmt.Errorf("offer %s: %w", off.ID, errs.ErrNotFound)
	}
	return s.GetOffer(ctx, off.ID)
}

func (s *Store) GetOffer(ctx context.Context, id string) (offer.Offer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, seller_id, price_per_token, amount, status, created_at, updated_at
		FROM launchpad_offers
		WHERE id = $1
	`, id)

	var off offer.Offer
	err := row.Scan(&off.ID, &off.ProjectID, &off.SellerID, &off.PricePerToken,
		&off.Amount, &off.Status, &off.CreatedAt, &off.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return offer.Offer{}, fmt.Errorf("offer %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return offer.Offer{}, err
	}
	return off, nil
}

func (s *Store) ListOffers(ctx context.Context, projectID string) ([]offer.Offer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, seller_id, price_per_token, amount, status, created_at, updated_at
		FROM launchpad_offers
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]offer.Offer, 0)
	for rows.Next() {
		var off offer.Offer
		if err := rows.Scan(&off.ID, &off.ProjectID, &off.SellerID, &off.PricePerToken,
			&off.Amount, &off.Status, &off.CreatedAt, &off.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, off)
	}
	return result, rows.Err()
}

// --- GovernanceStore --------------------------------------------------------

func (s *Store) CreateMilestone(ctx context.Context, ms governance.Milestone) (governance.Milestone, error) {
	if ms.ID == "" {
		ms.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ms.CreatedAt = now
	ms.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launchpad_milestones
			(id, project_id, title, description, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ms.ID, ms.ProjectID, ms.Title, ms.Description, ms.Amount, ms.Status,
		ms.CreatedAt, ms.UpdatedAt)
	if err != nil {
		return governance.Milestone{}, err
	}
	return ms, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, ms governance.Milestone) (governance.Milestone, error) {
	ms.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE launchpad_milestones
		SET title = $2, description = $3, amount = $4, status = $5, updated_at = $6
		WHERE id = $1
	`, ms.ID, ms.Title, ms.Description, ms.Amount, ms.Status, ms.UpdatedAt)
	if err != nil {
		return governance.Milestone{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return governance.Milestone{}, fmt.Errorf("milestone %s: %w", ms.ID, errs.ErrNotFound)
	}
	return s.GetMilestone(ctx, ms.ID)
}

func (s *Store) GetMilestone(ctx context.Context, id string) (governance.Milestone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, description, amount, status, created_at, updated_at
		FROM launchpad_milestones
		WHERE id = $1
	`, id)

	var ms governance.Milestone
	err := row.Scan(&ms.ID, &ms.ProjectID, &ms.Title, &ms.Description,
		&ms.Amount, &ms.Status, &ms.CreatedAt, &ms.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return governance.Milestone{}, fmt.Errorf("milestone %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return governance.Milestone{}, err
	}
	return ms, nil
}

func (s *Store) ListMilestones(ctx context.Context, projectID string) ([]governance.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, description, amount, status, created_at, updated_at
		FROM launchpad_milestones
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]governance.Milestone, 0)
	for rows.Next() {
		var ms governance.Milestone
		if err := rows.Scan(&ms.ID, &ms.ProjectID, &ms.Title, &ms.Description,
			&ms.Amount, &ms.Status, &ms.CreatedAt, &ms.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, ms)
	}
	return result, rows.Err()
}

func (s *Store) CreateProposal(ctx context.Context, prop governance.Proposal) (governance.Proposal, error) {
	if prop.ID == "" {
		prop.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	prop.CreatedAt = now
	prop.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launchpad_proposals
			(id, project_id, milestone_id, amount, approvals, rejections, released, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, prop.ID, prop.ProjectID, prop.MilestoneID, prop.Amount, prop.Approvals,
		prop.Rejections, prop.Released, prop.CreatedAt, prop.UpdatedAt)
	if err != nil {
		return governance.Proposal{}, err
	}
	return prop, nil
}

func (s *Store) UpdateProposal(ctx context.Context, prop governance.Proposal) (governance.Proposal, error) {
	prop.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE launchpad_proposals
		SET amount = $2, approvals = $3, rejections = $4, released = $5, updated_at = $6
		WHERE id = $1
	`, prop.ID, prop.Amount, prop.Approvals, prop.Rejections, prop.Released, prop.UpdatedAt)
	if err != nil {
		return governance.Proposal{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return governance.Proposal{}, fmt.Errorf("proposal %s: %w", prop.ID, errs.ErrNotFound)
	}
	return s.GetProposal(ctx, prop.ID)
}

func (s *Store) GetProposal(ctx context.Context, id string) (governance.Proposal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, milestone_id, amount, approvals, rejections, released, created_at, updated_at
		FROM launchpad_proposals
		WHERE id = $1
	`, id)

	var prop governance.Proposal
	err := row.Scan(&prop.ID, &prop.ProjectID, &prop.MilestoneID, &prop.Amount,
		&prop.Approvals, &prop.Rejections, &prop.Released, &prop.CreatedAt, &prop.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return governance.Proposal{}, fmt.Errorf("proposal %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return governance.Proposal{}, err
	}
	return prop, nil
}

func (s *Store) ListProposals(ctx context.Context, projectID string) ([]governance.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, milestone_id, amount, approvals, rejections, released, created_at, updated_at
		FROM launchpad_proposals
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]governance.Proposal, 0)
	for rows.Next() {
		var prop governance.Proposal
		if err := rows.Scan(&prop.ID, &prop.ProjectID, &prop.MilestoneID, &prop.Amount,
			&prop.Approvals, &prop.Rejections, &prop.Released, &prop.CreatedAt, &prop.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, prop)
	}
	return result, rows.Err()
}
