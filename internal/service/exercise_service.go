package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/metrics"
	"ksaphier/trainerapp/internal/repository"
	"ksaphier/trainerapp/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = fmt.Errorf("exercise not found: %w", ErrNotFound)
	ErrMediaNotFound    = fmt.Errorf("exercise has no media: %w", ErrNotFound)
	ErrObjectNotFound   = fmt.Errorf("object was not uploaded: %w", ErrNotFound)
)

// UploadURLResponse is returned when a client asks where to upload exercise media.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key client needs to report back on confirm
}

// ExerciseService manages the exercise catalog, its muscle links and demo media.
type ExerciseService interface {
	// ListExercises returns the whole catalog, or only exact name matches when name is set.
	ListExercises(ctx context.Context, name string) ([]domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID int64) (*domain.Exercise, error)
	CreateExercise(ctx context.Context, name, description string) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID int64, name, description string) (*domain.Exercise, error)
	// DeleteExercise removes the exercise with its link rows and muscle links in one transaction.
	DeleteExercise(ctx context.Context, exerciseID int64) error

	LinkMuscle(ctx context.Context, exerciseID, muscleID int64) error
	UnlinkMuscle(ctx context.Context, exerciseID, muscleID int64) error

	RequestMediaUploadURL(ctx context.Context, exerciseID int64, contentType string) (*UploadURLResponse, error)
	ConfirmMedia(ctx context.Context, exerciseID int64, objectKey, contentType string) (*domain.Exercise, error)
	GetMediaDownloadURL(ctx context.Context, exerciseID int64) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	store       repository.Store
	fileStorage storage.FileStorage // nil when no bucket is configured
	log         *zap.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(store repository.Store, fileStorage storage.FileStorage, log *zap.Logger) ExerciseService {
	return &exerciseService{
		store:       store,
		fileStorage: fileStorage,
		log:         log,
	}
}

func (s *exerciseService) ListExercises(ctx context.Context, name string) ([]domain.Exercise, error) {
	if name = strings.TrimSpace(name); name != "" {
		return s.store.Exercises.ListByName(ctx, name)
	}
	return s.store.Exercises.List(ctx)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID int64) (*domain.Exercise, error) {
	exercise, err := s.store.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// CreateExercise validates and stores a new catalog entry.
func (s *exerciseService) CreateExercise(ctx context.Context, name, description string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("exercise name is required: %w", ErrValidationFailed)
	}

	exercise := &domain.Exercise{Name: name, Description: description}
	if err := s.store.Exercises.Create(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

// UpdateExercise overwrites name and description, leaving links and media alone.
func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID int64, name, description string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("exercise name is required: %w", ErrValidationFailed)
	}

	err := s.store.Exercises.Update(ctx, &domain.Exercise{ID: exerciseID, Name: name, Description: description})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.GetExerciseByID(ctx, exerciseID)
}

func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID int64) error {
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return err
	}

	var removed int64
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.store.WorkoutExercises.DeleteByExerciseID(ctx, exerciseID)
		if err != nil {
			return fmt.Errorf("delete workout links: %w", err)
		}
		removed = n
		if _, err := s.store.Muscles.UnlinkExercise(ctx, exerciseID); err != nil {
			return fmt.Errorf("unlink muscles: %w", err)
		}
		if err := s.store.Exercises.Delete(ctx, exerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrExerciseNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordCascadeDelete("exercise", removed)

	if exercise.HasMedia() && s.fileStorage != nil {
		s.deleteObjectBestEffort(ctx, exercise.MediaKey)
	}
	return nil
}

func (s *exerciseService) LinkMuscle(ctx context.Context, exerciseID, muscleID int64) error {
	if _, err := s.GetExerciseByID(ctx, exerciseID); err != nil {
		return err
	}
	if _, err := s.store.Muscles.GetByID(ctx, muscleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMuscleNotFound
		}
		return err
	}

	if err := s.store.Muscles.Link(ctx, exerciseID, muscleID); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			// One side vanished between the checks and the insert.
			return fmt.Errorf("exercise %d or muscle %d: %w", exerciseID, muscleID, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *exerciseService) UnlinkMuscle(ctx context.Context, exerciseID, muscleID int64) error {
	err := s.store.Muscles.Unlink(ctx, exerciseID, muscleID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("muscle %d is not linked to exercise %d: %w", muscleID, exerciseID, ErrNotFound)
	}
	return err
}

// RequestMediaUploadURL hands out a presigned PUT for a fresh object key under
// the exercise's prefix. Nothing is recorded until ConfirmMedia.
func (s *exerciseService) RequestMediaUploadURL(ctx context.Context, exerciseID int64, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	ext, err := mediaExtension(contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetExerciseByID(ctx, exerciseID); err != nil {
		return nil, err
	}

	objectKey := path.Join(mediaPrefix(exerciseID), uuid.NewString()+"."+ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmMedia records an uploaded object on the exercise. The object must
// exist and belong to this exercise. A replaced object is removed afterwards.
func (s *exerciseService) ConfirmMedia(ctx context.Context, exerciseID int64, objectKey, contentType string) (*domain.Exercise, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(objectKey, mediaPrefix(exerciseID)+"/") {
		return nil, fmt.Errorf("object key does not belong to exercise %d: %w", exerciseID, ErrValidationFailed)
	}
	if _, err := mediaExtension(contentType); err != nil {
		return nil, err
	}

	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	ok, err := s.fileStorage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("check object: %w", err)
	}
	if !ok {
		return nil, ErrObjectNotFound
	}

	if err := s.store.Exercises.SetMedia(ctx, exerciseID, objectKey, contentType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	if exercise.HasMedia() && exercise.MediaKey != objectKey {
		s.deleteObjectBestEffort(ctx, exercise.MediaKey)
	}
	return s.GetExerciseByID(ctx, exerciseID)
}

func (s *exerciseService) GetMediaDownloadURL(ctx context.Context, exerciseID int64) (string, error) {
	if s.fileStorage == nil {
		return "", ErrStorageUnavailable
	}
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	if !exercise.HasMedia() {
		return "", ErrMediaNotFound
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// deleteObjectBestEffort runs after the store change has committed, so a
// failure only leaves an orphaned object behind.
func (s *exerciseService) deleteObjectBestEffort(ctx context.Context, key string) {
	if err := s.fileStorage.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("failed to delete exercise media", zap.String("key", key), zap.Error(err))
	}
}

func mediaPrefix(exerciseID int64) string {
	return "exercises/" + strconv.FormatInt(exerciseID, 10)
}

// mediaExtension accepts image and video types and derives the key
// extension from the subtype, ignoring parameters.
func mediaExtension(contentType string) (string, error) {
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	mediaType = strings.TrimSpace(mediaType)
	kind, sub, ok := strings.Cut(mediaType, "/")
	if !ok || sub == "" || (kind != "image" && kind != "video") {
		return "", fmt.Errorf("content type %q must be an image or video type: %w", contentType, ErrValidationFailed)
	}
	// "video/x-matroska" -> "matroska", "image/svg+xml" -> "svg"
	sub = strings.TrimPrefix(sub, "x-")
	sub, _, _ = strings.Cut(sub, "+")
	return sub, nil
}
