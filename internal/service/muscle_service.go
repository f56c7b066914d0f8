package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"
)

var ErrMuscleNotFound = fmt.Errorf("muscle not found: %w", ErrNotFound)

// MuscleService manages the muscle catalog.
type MuscleService interface {
	ListMuscles(ctx context.Context) ([]domain.Muscle, error)
	GetMuscleByID(ctx context.Context, muscleID int64) (*domain.Muscle, error)
	CreateMuscle(ctx context.Context, name, description string) (*domain.Muscle, error)
	UpdateMuscle(ctx context.Context, muscleID int64, name, description string) (*domain.Muscle, error)
	// DeleteMuscle detaches the muscle from every exercise, then removes it.
	DeleteMuscle(ctx context.Context, muscleID int64) error
	// ListMusclesForExercise is empty, not an error, for an unknown exercise.
	ListMusclesForExercise(ctx context.Context, exerciseID int64) ([]domain.Muscle, error)
}

type muscleService struct {
	store repository.Store
}

func NewMuscleService(store repository.Store) MuscleService {
	return &muscleService{store: store}
}

func (s *muscleService) ListMuscles(ctx context.Context) ([]domain.Muscle, error) {
	return s.store.Muscles.List(ctx)
}

func (s *muscleService) GetMuscleByID(ctx context.Context, muscleID int64) (*domain.Muscle, error) {
	muscle, err := s.store.Muscles.GetByID(ctx, muscleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMuscleNotFound
		}
		return nil, err
	}
	return muscle, nil
}

func (s *muscleService) CreateMuscle(ctx context.Context, name, description string) (*domain.Muscle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("muscle name is required: %w", ErrValidationFailed)
	}
	muscle := &domain.Muscle{Name: name, Description: description}
	if err := s.store.Muscles.Create(ctx, muscle); err != nil {
		return nil, err
	}
	return muscle, nil
}

func (s *muscleService) UpdateMuscle(ctx context.Context, muscleID int64, name, description string) (*domain.Muscle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("muscle name is required: %w", ErrValidationFailed)
	}
	err := s.store.Muscles.Update(ctx, &domain.Muscle{ID: muscleID, Name: name, Description: description})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMuscleNotFound
		}
		return nil, err
	}
	return s.GetMuscleByID(ctx, muscleID)
}

func (s *muscleService) DeleteMuscle(ctx context.Context, muscleID int64) error {
	return s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.Muscles.UnlinkMuscle(ctx, muscleID); err != nil {
			return fmt.Errorf("unlink exercises: %w", err)
		}
		if err := s.store.Muscles.Delete(ctx, muscleID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMuscleNotFound
			}
			return err
		}
		return nil
	})
}

func (s *muscleService) ListMusclesForExercise(ctx context.Context, exerciseID int64) ([]domain.Muscle, error) {
	return s.store.Muscles.ListByExerciseID(ctx, exerciseID)
}
