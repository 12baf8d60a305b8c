// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. There is no inheritance,
// so shared shapes are built by composition (see CommonFields in draft.go).
package model

import "time"

// Tier is a subscription tier. Only the free tier exists today.
type Tier string

const TierFree Tier = "free"

// User is the signed-in identity held by the session store.
//
// Identities are synthesized locally on sign-in and sign-up rather than
// issued by a server, and they are replaced wholesale on profile update, with
// no field-level merge. The struct is therefore a plain value:
// copying it is how callers take a snapshot.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	SubscriptionTier Tier   `json:"subscriptionTier"`
}

// Account is a User as the accounts table stores it. PasswordHash is a
// bcrypt hash and never leaves the server.
type Account struct {
	User
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
