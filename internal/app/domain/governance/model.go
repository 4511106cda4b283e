// Package governance defines milestones and the withdrawal proposals that
// move funds out of a project's reserve.
package governance

import "time"

// MilestoneStatus tracks whether a milestone's funds have been released.
type MilestoneStatus string

const (
	MilestonePending  MilestoneStatus = "pending"
	MilestoneReleased MilestoneStatus = "released"
)

// Milestone is a founder-declared deliverable with a planned budget.
type Milestone struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Amount      float64         `json:"amount"`
	Status      MilestoneStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Proposal is a founder's request to withdraw funds against a milestone.
// Votes are tallies only; the engine does not track who voted.
type Proposal struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	MilestoneID string    `json:"milestone_id"`
	Amount      float64   `json:"amount"`
	Approvals   int64     `json:"approvals"`
	Rejections  int64     `json:"rejections"`
	Released    bool      `json:"released"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Approved reports whether the proposal has passed its vote: at least one
// approval and strictly more approvals than rejections.
func (p Proposal) Approved() bool {
	return p.Approvals >= 1 && p.Approvals > p.Rejections
}
