// Package domain models the referral program: every account carries a
// shareable code, and each signup through a code rewards the referrer.
package domain

import "context"

// RewardCredits is granted to the referrer for each account that signs
// up through their code.
const RewardCredits = 5

// Overview is what an account sees on its referral page.
type Overview struct {
	Code     string   `json:"code"`
	Link     string   `json:"link"`
	Referred []string `json:"referred"`
	Earned   int64    `json:"earned"`
}

type Service interface {
	// MintCode derives a fresh referral code from the display name.
	MintCode(name string) string

	// Apply credits the owner of code for a successful referral. An
	// unknown or empty code is ignored without error: a bad code must
	// never block a signup.
	Apply(ctx context.Context, code string) error

	// Overview reports the caller's code, shareable link and the
	// accounts referred so far.
	Overview(ctx context.Context) (*Overview, error)
}
