// Package project defines the crowdfunded project and its bonding-curve
// state. Supply and Reserve are the two authoritative counters every curve
// transition moves together.
package project

import "time"

// Project is a crowdfunding campaign with its own token curve.
type Project struct {
	ID          string    `json:"id"`
	FounderID   string    `json:"founder_id"`
	Name        string    `json:"name"`
	Summary     string    `json:"summary,omitempty"`
	Plan        string    `json:"plan,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	ResumeURL   string    `json:"resume_url,omitempty"`
	TokenSymbol string    `json:"token_symbol"`
	Supply      int64     `json:"supply"`
	Reserve     float64   `json:"reserve"`
	FundingGoal float64   `json:"funding_goal"`
	CapReached  bool      `json:"cap_reached"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
