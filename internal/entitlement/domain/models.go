// Package domain models the entitlement state machine that gates
// document issuance.
package domain

import (
	"fmt"
	"time"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
)

// State is the entitlement state of an account at a point in time.
type State string

const (
	// StateBlocked: no credits, never verified, no subscription.
	StateBlocked State = "blocked"
	// StateCreditEligible: at least one consumable credit.
	StateCreditEligible State = "credit_eligible"
	// StateVerified: identity-verified but out of credits and not subscribed.
	StateVerified State = "verified"
	// StateSubscribed: subscription expiry on or after today.
	StateSubscribed State = "subscribed"
)

// StateOf evaluates the gate's state machine. Subscription wins over
// credits: a subscribed account issues without debit.
func StateOf(account *accountdomain.Account, now time.Time) State {
	switch {
	case account.Subscribed(now):
		return StateSubscribed
	case account.Credits > 0:
		return StateCreditEligible
	case account.Verified:
		return StateVerified
	default:
		return StateBlocked
	}
}

type DenialReason string

const (
	ReasonNeedsVerification DenialReason = "needs_verification"
	ReasonNeedsSubscription DenialReason = "needs_subscription"
)

// DeniedError rejects an issuance with no state change.
type DeniedError struct {
	Reason DenialReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("entitlement_denied: %s", e.Reason)
}

// Decision is the outcome of a granted authorization.
type Decision struct {
	State       State
	DebitCredit bool
}

// Plan is a subscription duration in days. Closed enumeration.
type Plan int

const (
	PlanWeek     Plan = 7
	PlanMonth    Plan = 30
	PlanQuarter  Plan = 90
	PlanHalfYear Plan = 180
	PlanYear     Plan = 365
)

func (p Plan) Valid() bool {
	switch p {
	case PlanWeek, PlanMonth, PlanQuarter, PlanHalfYear, PlanYear:
		return true
	default:
		return false
	}
}

func (p Plan) Duration() time.Duration {
	return time.Duration(p) * 24 * time.Hour
}

const (
	// InitialCredits is granted to every new account at signup.
	InitialCredits = 5
	// VerificationBonusCredits is granted once, on the first successful
	// identity verification.
	VerificationBonusCredits = 5
)
