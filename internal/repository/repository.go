package repository

import (
	"context"

	"ksaphier/trainerapp/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound         = RepositoryError("not found")
	ErrDuplicate        = RepositoryError("duplicate key")
	ErrInvalidReference = RepositoryError("referenced row does not exist")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	// Create assigns user.ID and user.CreatedAt. Returns ErrDuplicate when the username is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id int64) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	ListByName(ctx context.Context, name string) ([]domain.Exercise, error)
	// Update overwrites name and description only.
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetMedia(ctx context.Context, id int64, key, contentType string) error
	Delete(ctx context.Context, id int64) error
}

// MuscleRepository defines the interface for muscles and the Exercise<->Muscle join.
type MuscleRepository interface {
	Create(ctx context.Context, muscle *domain.Muscle) error
	GetByID(ctx context.Context, id int64) (*domain.Muscle, error)
	List(ctx context.Context) ([]domain.Muscle, error)
	// Update overwrites name and description only.
	Update(ctx context.Context, muscle *domain.Muscle) error
	Delete(ctx context.Context, id int64) error

	// ListByExerciseID returns the muscles joined to the exercise; empty when there are none.
	ListByExerciseID(ctx context.Context, exerciseID int64) ([]domain.Muscle, error)
	// Link is idempotent.
	Link(ctx context.Context, exerciseID, muscleID int64) error
	// Unlink returns ErrNotFound when the pair is not linked.
	Unlink(ctx context.Context, exerciseID, muscleID int64) error
	UnlinkExercise(ctx context.Context, exerciseID int64) (int64, error)
	UnlinkMuscle(ctx context.Context, muscleID int64) (int64, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) error
	GetByID(ctx context.Context, id int64) (*domain.Workout, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.Workout, error)
	// Update overwrites name, description and type only.
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id int64) error
}

// WorkoutExerciseRepository defines the interface for workout<->exercise link rows.
type WorkoutExerciseRepository interface {
	// Create returns ErrInvalidReference when the store rejects a dangling workout or exercise id.
	Create(ctx context.Context, link *domain.WorkoutExercise) error
	GetByID(ctx context.Context, id int64) (*domain.WorkoutExercise, error)
	// ListByWorkoutID returns rows in insertion order.
	ListByWorkoutID(ctx context.Context, workoutID int64) ([]domain.WorkoutExercise, error)
	Delete(ctx context.Context, id int64) error
	DeleteByWorkoutID(ctx context.Context, workoutID int64) (int64, error)
	DeleteByExerciseID(ctx context.Context, exerciseID int64) (int64, error)
}

// Transactor runs fn so that every repository call made with the context it
// receives commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users            UserRepository
	Exercises        ExerciseRepository
	Muscles          MuscleRepository
	Workouts         WorkoutRepository
	WorkoutExercises WorkoutExerciseRepository
	Tx               Transactor
}
