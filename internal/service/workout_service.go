package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/metrics"
	"ksaphier/trainerapp/internal/repository"
)

var ErrWorkoutNotFound = fmt.Errorf("workout not found: %w", ErrNotFound)

// WorkoutService manages workouts and builds the workout details read-model.
type WorkoutService interface {
	ListWorkoutsForUser(ctx context.Context, userID int64) ([]domain.Workout, error)
	GetWorkoutByID(ctx context.Context, workoutID int64) (*domain.Workout, error)
	// CreateWorkout stamps ownerID onto the workout. Any owner in the input is ignored.
	CreateWorkout(ctx context.Context, ownerID int64, name, description, workoutType string) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, workoutID int64, name, description, workoutType string) (*domain.Workout, error)
	// DeleteWorkout removes the workout and all of its link rows atomically.
	DeleteWorkout(ctx context.Context, workoutID int64) error
	GetWorkoutDetails(ctx context.Context, workoutID int64) (*domain.WorkoutDetails, error)
}

type workoutService struct {
	store repository.Store
}

func NewWorkoutService(store repository.Store) WorkoutService {
	return &workoutService{store: store}
}

func (s *workoutService) ListWorkoutsForUser(ctx context.Context, userID int64) ([]domain.Workout, error) {
	return s.store.Workouts.ListByUserID(ctx, userID)
}

func (s *workoutService) GetWorkoutByID(ctx context.Context, workoutID int64) (*domain.Workout, error) {
	workout, err := s.store.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) CreateWorkout(ctx context.Context, ownerID int64, name, description, workoutType string) (*domain.Workout, error) {
	if ownerID <= 0 {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("workout name is required: %w", ErrValidationFailed)
	}

	workout := &domain.Workout{
		Name:        name,
		Description: description,
		Type:        workoutType,
		UserID:      ownerID,
	}
	if err := s.store.Workouts.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, workoutID int64, name, description, workoutType string) (*domain.Workout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("workout name is required: %w", ErrValidationFailed)
	}
	err := s.store.Workouts.Update(ctx, &domain.Workout{
		ID:          workoutID,
		Name:        name,
		Description: description,
		Type:        workoutType,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.GetWorkoutByID(ctx, workoutID)
}

func (s *workoutService) DeleteWorkout(ctx context.Context, workoutID int64) error {
	var removed int64
	err := s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.store.WorkoutExercises.DeleteByWorkoutID(ctx, workoutID)
		if err != nil {
			return fmt.Errorf("delete workout links: %w", err)
		}
		removed = n
		if err := s.store.Workouts.Delete(ctx, workoutID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordCascadeDelete("workout", removed)
	return nil
}

// GetWorkoutDetails joins the workout to its link rows and the exercise each
// row references. Rows keep insertion order. A row whose exercise is gone
// fails the whole read with ErrDanglingReference.
func (s *workoutService) GetWorkoutDetails(ctx context.Context, workoutID int64) (*domain.WorkoutDetails, error) {
	workout, err := s.GetWorkoutByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	links, err := s.store.WorkoutExercises.ListByWorkoutID(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	// An exercise repeated in the workout is fetched once.
	exercises := make(map[int64]*domain.Exercise, len(links))
	views := make([]domain.WorkoutExerciseView, 0, len(links))
	for _, link := range links {
		exercise, ok := exercises[link.ExerciseID]
		if !ok {
			exercise, err = s.store.Exercises.GetByID(ctx, link.ExerciseID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("%w: link %d references missing exercise %d",
						ErrDanglingReference, link.ID, link.ExerciseID)
				}
				return nil, err
			}
			exercises[link.ExerciseID] = exercise
		}

		views = append(views, domain.WorkoutExerciseView{
			ID:          link.ID,
			ExerciseID:  exercise.ID,
			Name:        exercise.Name,
			Description: exercise.Description,
			Series:      link.Series,
			Reps:        link.Reps,
			Rest:        link.Rest,
			Weight:      link.Weight,
		})
	}

	return &domain.WorkoutDetails{
		Details:   *workout,
		Exercises: views,
	}, nil
}
