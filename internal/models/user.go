package models

import "time"

// UserProfile is the users/{uid} document written at sign-up.
type UserProfile struct {
	UID   string `firestore:"uid" json:"uid"`
	Name  string `firestore:"name" json:"name"`
	Email string `firestore:"email" json:"email"`
}

// Account is the credential record kept by the identity gateway.
// PasswordHash never leaves the services package.
type Account struct {
	UID          string    `firestore:"uid" json:"-"`
	Email        string    `firestore:"email" json:"-"`
	PasswordHash string    `firestore:"passwordHash" json:"-"`
	CreatedAt    time.Time `firestore:"createdAt" json:"-"`
}

type SessionUser struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
