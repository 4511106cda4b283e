// Package offer defines escrowed secondary-market sell offers.
package offer

import "time"

// Status tracks the lifecycle of an offer.
type Status string

const (
	StatusOpen   Status = "open"
	StatusFilled Status = "filled"
	// StatusCancelled is reserved: the engine has no cancel operation, so
	// escrowed tokens stay locked until the offer fills.
	StatusCancelled Status = "cancelled"
)

// Offer is a seller's escrowed listing. Tokens move from the seller's
// holding into the offer at creation and to the buyer at fill time, so the
// offer's Amount always backs real escrow while Status is open.
type Offer struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	SellerID      string    `json:"seller_id"`
	PricePerToken float64   `json:"price_per_token"`
	Amount        int64     `json:"amount"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
