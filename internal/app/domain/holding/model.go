// Package holding defines the per-(user, project) token balance.
package holding

import "time"

// Holding is one user's token balance in one project. Balances are whole
// tokens and never negative.
type Holding struct {
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
