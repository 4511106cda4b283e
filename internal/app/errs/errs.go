// Package errs declares the sentinel errors shared by the launchpad engine.
// Services wrap these with context via fmt.Errorf and %w; the HTTP layer maps
// them to status codes with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidAmount rejects non-positive token or fund quantities.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidInput rejects requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals that the caller is not allowed to perform the
	// operation, such as a non-founder creating a milestone.
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientBalance signals that a debit would push a token
	// balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCapReached signals that a project has hit its funding goal and no
	// longer accepts curve buys.
	ErrCapReached = errors.New("funding cap reached")

	// ErrQuoteTooSmall signals that the submitted funds do not cover even
	// one token at the current curve price.
	ErrQuoteTooSmall = errors.New("funds too small for one token")

	// ErrOfferNotOpen signals a fill against an offer that is no longer
	// open.
	ErrOfferNotOpen = errors.New("offer not open")

	// ErrAlreadyReleased signals a vote or release against a proposal whose
	// funds have already moved.
	ErrAlreadyReleased = errors.New("already released")

	// ErrNotApproved signals a release attempt on a proposal that has not
	// passed its vote.
	ErrNotApproved = errors.New("proposal not approved")
)
