package domain

import "time"

// User is an account that owns workouts.
type User struct {
	ID           int64     `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"` // unique
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"` // Never expose this via JSON
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
