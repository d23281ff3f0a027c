// Package models defines the wire types exchanged between the admin
// console and the campaign platform API.
package models

import (
	"encoding/json"
	"time"
)

// Role is the account role reported by the API.
type Role string

const (
	// RoleAdmin may use the admin console.
	RoleAdmin Role = "admin"
	// RoleActive is a regular account in good standing.
	RoleActive Role = "active"
	// RoleRestricted is an account whose sending is restricted.
	RoleRestricted Role = "restricted"
	// RoleUser is the default role for new signups.
	RoleUser Role = "user"
)

// UserStatus is the status badge derived from a user's role and
// verification flag.
type UserStatus string

const (
	StatusActive     UserStatus = "Active"
	StatusRestricted UserStatus = "Restricted"
	StatusSuspended  UserStatus = "Suspended"
)

// User is an account as seen by the console.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the display name chosen at signup.
	Username string `json:"username"`
	// Email is the login address.
	Email string `json:"email"`
	// Role is the account role.
	Role Role `json:"role"`
	// IsVerified is false for suspended or unapproved accounts.
	IsVerified bool `json:"isVerified"`
	// Plan is the numeric plan code, see PlanName.
	Plan int `json:"plan"`
	// CreatedAt is the signup time.
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts "_id" as an alias for "id".
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// Status derives the restriction badge: unverified accounts are
// suspended, restricted roles are restricted, everything else is active.
func (u User) Status() UserStatus {
	switch {
	case !u.IsVerified:
		return StatusSuspended
	case u.Role == RoleRestricted:
		return StatusRestricted
	default:
		return StatusActive
	}
}

// PlanName returns the display name of the user's plan.
func (u User) PlanName() string {
	return PlanName(u.Plan)
}

var planNames = map[int]string{
	1: "basic",
	2: "premium",
	3: "premiumPlus",
}

// PlanName maps a numeric plan code to its display name. Unknown codes
// are shown as "Free".
func PlanName(code int) string {
	if name, ok := planNames[code]; ok {
		return name
	}
	return "Free"
}
