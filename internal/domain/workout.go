package domain

import "time"

// Workout is a named training session owned by a single user.
type Workout struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Type        string    `bson:"type" json:"type"`
	UserID      int64     `bson:"userId" json:"userId"` // Owner, stamped server-side from the token
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise links one Exercise into one Workout with its training parameters.
// The same exercise may appear in a workout more than once.
type WorkoutExercise struct {
	ID         int64     `bson:"_id" json:"id"`
	WorkoutID  int64     `bson:"workoutId" json:"workoutId"`
	ExerciseID int64     `bson:"exerciseId" json:"exerciseId"`
	Series     int       `bson:"series" json:"series"`
	Reps       int       `bson:"reps" json:"reps"`
	Rest       int       `bson:"rest" json:"rest"`     // seconds
	Weight     int       `bson:"weight" json:"weight"` // kg
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
