package domain

import "time"

// Muscle is the non-owning side of the Exercise<->Muscle relation.
// The relation itself lives in a separate join set of (exerciseId, muscleId) pairs.
type Muscle struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseMuscle is one row of the Exercise<->Muscle join.
type ExerciseMuscle struct {
	ExerciseID int64 `bson:"exerciseId" json:"exerciseId"`
	MuscleID   int64 `bson:"muscleId" json:"muscleId"`
}
