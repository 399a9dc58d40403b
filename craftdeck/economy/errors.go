// Package economy holds the error taxonomy shared by the credit
// ledger, the draw engine and the upgrade engine.
package economy

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned when a debit would push a
	// balance below zero. The balance is left untouched.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCardNotFound is returned when a card ID has no catalog entry.
	ErrCardNotFound = errors.New("card not found")

	// ErrEmptyPool is returned when a draw resolves to a rarity tier
	// with no cards and the common fallback is empty too.
	ErrEmptyPool = errors.New("no cards available to draw")

	// ErrInvalidAmount is returned for zero or negative ledger amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrDailyAlreadyClaimed is returned when the daily bonus cooldown
	// has not elapsed yet.
	ErrDailyAlreadyClaimed = errors.New("daily bonus already claimed")
)

// Ineligibility reasons reported by upgrade checks.
const (
	ReasonNotOwned               = "not-owned"
	ReasonMaxTierReached         = "max-tier-reached"
	ReasonInsufficientDuplicates = "insufficient-duplicates"
)

// NotEligibleError explains why an upgrade cannot proceed. It carries a
// machine-readable reason so callers can branch without string matching
// the message.
type NotEligibleError struct {
	Reason string
	CardID int64
	Need   int64
	Have   int64
}

func (e *NotEligibleError) Error() string {
	switch e.Reason {
	case ReasonInsufficientDuplicates:
		return fmt.Sprintf("card %d not eligible for upgrade: %s (need %d, have %d)",
			e.CardID, e.Reason, e.Need, e.Have)
	default:
		return fmt.Sprintf("card %d not eligible for upgrade: %s", e.CardID, e.Reason)
	}
}

// IsNotEligible reports whether err is a NotEligibleError, returning it
// for inspection when so.
func IsNotEligible(err error) (*NotEligibleError, bool) {
	var ne *NotEligibleError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}
