package models

import "fmt"

// Plan is a subscription plan. Name is its natural key.
type Plan struct {
	Name          string `json:"name"`
	EmailLimit    int    `json:"emailLimit"`
	Price         int    `json:"price"` // cents per month
	StripePriceID string `json:"stripePriceId,omitempty"`
	Description   string `json:"description,omitempty"`
}

// PriceString formats Price as dollars.
func (p Plan) PriceString() string {
	return FormatCents(p.Price)
}

// PlanLimitUpdate is the body of PATCH /billing/plan/:name.
type PlanLimitUpdate struct {
	EmailLimit int `json:"emailLimit"`
}

// BillingRow is one user's line in the billing snapshot.
type BillingRow struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Plan       string `json:"plan"`
	Role       Role   `json:"role"`
	EmailLimit int    `json:"emailLimit"`
	Price      int    `json:"price"`
	Status     string `json:"status"`
	Expiry     string `json:"expiry"`
}

// FormatCents renders an amount in cents as "$12.34".
func FormatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
