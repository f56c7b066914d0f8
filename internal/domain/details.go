package domain

// WorkoutDetails is the read-model returned for a single workout: the workout
// itself plus its link rows flattened with the referenced exercise.
// It is assembled on demand and never stored.
type WorkoutDetails struct {
	Details   Workout               `json:"details"`
	Exercises []WorkoutExerciseView `json:"exercises"`
}

// WorkoutExerciseView is one flattened link row. ID is the link row id, which
// is what clients pass back to remove the exercise from the workout.
type WorkoutExerciseView struct {
	ID          int64  `json:"id"`
	ExerciseID  int64  `json:"exerciseId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Series      int    `json:"series"`
	Reps        int    `json:"reps"`
	Rest        int    `json:"rest"`
	Weight      int    `json:"weight"`
}
