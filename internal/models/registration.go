package models

import "time"

// PendingRegistration is a signup waiting for admin approval.
type PendingRegistration struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	VerificationCode string    `json:"verificationCode"`
	CodeExpires      time.Time `json:"codeExpires"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Expired reports whether the verification code is past its expiry.
func (p PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.CodeExpires)
}

// PendingRegistrationsResponse wraps GET /auth/pending-registrations.
type PendingRegistrationsResponse struct {
	PendingUsers []PendingRegistration `json:"pendingUsers"`
}
