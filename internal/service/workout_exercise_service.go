package service

import (
	"context"
	"errors"
	"fmt"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"
)

var ErrWorkoutExerciseNotFound = fmt.Errorf("workout exercise not found: %w", ErrNotFound)

// TrainingParams are the per-link training parameters.
type TrainingParams struct {
	Series int
	Reps   int
	Rest   int // seconds
	Weight int // kg
}

func (p TrainingParams) validate() error {
	if p.Series < 0 || p.Reps < 0 || p.Rest < 0 || p.Weight < 0 {
		return fmt.Errorf("series, reps, rest and weight must not be negative: %w", ErrValidationFailed)
	}
	return nil
}

// WorkoutExerciseService adds exercises to workouts and removes them again.
type WorkoutExerciseService interface {
	// AddToWorkout creates a link row. The same exercise may be added many times.
	AddToWorkout(ctx context.Context, workoutID, exerciseID int64, params TrainingParams) (*domain.WorkoutExercise, error)
	RemoveFromWorkout(ctx context.Context, linkID int64) error
}

type workoutExerciseService struct {
	store repository.Store
}

func NewWorkoutExerciseService(store repository.Store) WorkoutExerciseService {
	return &workoutExerciseService{store: store}
}

func (s *workoutExerciseService) AddToWorkout(ctx context.Context, workoutID, exerciseID int64, params TrainingParams) (*domain.WorkoutExercise, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.Workouts.GetByID(ctx, workoutID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if _, err := s.store.Exercises.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	link := &domain.WorkoutExercise{
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		Series:     params.Series,
		Reps:       params.Reps,
		Rest:       params.Rest,
		Weight:     params.Weight,
	}
	if err := s.store.WorkoutExercises.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			// The store rejected the row: a parent was deleted after the checks above.
			return nil, fmt.Errorf("workout %d or exercise %d: %w", workoutID, exerciseID, ErrNotFound)
		}
		return nil, err
	}
	return link, nil
}

func (s *workoutExerciseService) RemoveFromWorkout(ctx context.Context, linkID int64) error {
	if err := s.store.WorkoutExercises.Delete(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutExerciseNotFound
		}
		return err
	}
	return nil
}
