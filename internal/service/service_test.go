package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"
	"ksaphier/trainerapp/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fixture struct {
	raw       *memory.Store
	store     repository.Store
	auth      AuthService
	exercises ExerciseService
	muscles   MuscleService
	workouts  WorkoutService
	links     WorkoutExerciseService
	files     *fakeStorage
}

func newFixture(t *testing.T, withStorage bool) *fixture {
	t.Helper()
	raw := memory.New()
	store := raw.Repositories()
	f := &fixture{raw: raw, store: store}
	if withStorage {
		f.files = newFakeStorage()
		f.exercises = NewExerciseService(store, f.files, zap.NewNop())
	} else {
		f.exercises = NewExerciseService(store, nil, zap.NewNop())
	}
	f.auth = NewAuthService(store.Users, testSecret, time.Hour, "trainerapp")
	f.muscles = NewMuscleService(store)
	f.workouts = NewWorkoutService(store)
	f.links = NewWorkoutExerciseService(store)
	return f
}

type fakeStorage struct {
	mu         sync.Mutex
	objects    map[string]bool
	deleted    []string
	failDelete bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]bool{}}
}

func (s *fakeStorage) put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = true
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?put&ct=" + contentType, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?get", nil
}

func (s *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("bucket unavailable")
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func TestLegDayScenario(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 7, "Leg Day", "", "")
	require.NoError(t, err)

	_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Series: 3, Reps: 10, Rest: 60, Weight: 80})
	require.NoError(t, err)

	details, err := f.workouts.GetWorkoutDetails(ctx, workout.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", details.Details.Name)
	assert.Equal(t, int64(7), details.Details.UserID)
	require.Len(t, details.Exercises, 1)
	got := details.Exercises[0]
	assert.Equal(t, "Squat", got.Name)
	assert.Equal(t, [4]int{3, 10, 60, 80}, [4]int{got.Series, got.Reps, got.Rest, got.Weight})
}

func TestWorkoutDetails_FlattensEveryLinkInOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "legs")
	require.NoError(t, err)
	bench, err := f.exercises.CreateExercise(ctx, "Bench", "chest")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Full Body", "", "strength")
	require.NoError(t, err)

	params := []struct {
		exercise *domain.Exercise
		p        TrainingParams
	}{
		{squat, TrainingParams{3, 10, 60, 80}},
		{bench, TrainingParams{4, 8, 90, 70}},
		{squat, TrainingParams{2, 20, 30, 40}}, // same exercise again with other parameters
	}
	var linkIDs []int64
	for _, row := range params {
		link, err := f.links.AddToWorkout(ctx, workout.ID, row.exercise.ID, row.p)
		require.NoError(t, err)
		linkIDs = append(linkIDs, link.ID)
	}

	details, err := f.workouts.GetWorkoutDetails(ctx, workout.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, len(params))
	for i, row := range params {
		view := details.Exercises[i]
		assert.Equal(t, linkIDs[i], view.ID, "view carries the link row id")
		assert.Equal(t, row.exercise.ID, view.ExerciseID)
		assert.Equal(t, row.exercise.Name, view.Name)
		assert.Equal(t, row.exercise.Description, view.Description)
		assert.Equal(t, row.p, TrainingParams{view.Series, view.Reps, view.Rest, view.Weight})
	}
}

func TestWorkoutDetails_EmptyAndMissing(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	workout, err := f.workouts.CreateWorkout(ctx, 1, "Rest Day", "", "")
	require.NoError(t, err)
	details, err := f.workouts.GetWorkoutDetails(ctx, workout.ID)
	require.NoError(t, err)
	assert.NotNil(t, details.Exercises)
	assert.Empty(t, details.Exercises)

	_, err = f.workouts.GetWorkoutDetails(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkoutDetails_DanglingReference(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Leg Day", "", "")
	require.NoError(t, err)
	_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{})
	require.NoError(t, err)

	f.raw.RemoveExerciseRow(squat.ID)

	_, err = f.workouts.GetWorkoutDetails(ctx, workout.ID)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDeleteWorkout_CascadesLinks(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Leg Day", "", "")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Series: i})
		require.NoError(t, err)
	}

	require.NoError(t, f.workouts.DeleteWorkout(ctx, workout.ID))

	links, err := f.store.WorkoutExercises.ListByWorkoutID(ctx, workout.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	_, err = f.workouts.GetWorkoutByID(ctx, workout.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the exercise is shared and survives
	_, err = f.exercises.GetExerciseByID(ctx, squat.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.workouts.DeleteWorkout(ctx, workout.ID), ErrNotFound)
}

func TestDeleteExercise_CascadesLinksButKeepsMuscles(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	lunge, err := f.exercises.CreateExercise(ctx, "Lunge", "")
	require.NoError(t, err)
	quads, err := f.muscles.CreateMuscle(ctx, "Quadriceps", "")
	require.NoError(t, err)
	require.NoError(t, f.exercises.LinkMuscle(ctx, squat.ID, quads.ID))

	w1, err := f.workouts.CreateWorkout(ctx, 1, "A", "", "")
	require.NoError(t, err)
	w2, err := f.workouts.CreateWorkout(ctx, 1, "B", "", "")
	require.NoError(t, err)
	for _, w := range []*domain.Workout{w1, w2} {
		_, err = f.links.AddToWorkout(ctx, w.ID, squat.ID, TrainingParams{Series: 3})
		require.NoError(t, err)
		_, err = f.links.AddToWorkout(ctx, w.ID, lunge.ID, TrainingParams{Series: 2})
		require.NoError(t, err)
	}

	require.NoError(t, f.exercises.DeleteExercise(ctx, squat.ID))

	for _, w := range []*domain.Workout{w1, w2} {
		details, err := f.workouts.GetWorkoutDetails(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, details.Exercises, 1)
		assert.Equal(t, "Lunge", details.Exercises[0].Name)
	}

	_, err = f.muscles.GetMuscleByID(ctx, quads.ID)
	assert.NoError(t, err)
	linked, err := f.muscles.ListMusclesForExercise(ctx, squat.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)

	assert.ErrorIs(t, f.exercises.DeleteExercise(ctx, squat.ID), ErrNotFound)
}

type failingWorkoutDelete struct {
	repository.WorkoutRepository
	err error
}

func (r failingWorkoutDelete) Delete(context.Context, int64) error { return r.err }

type failingExerciseDelete struct {
	repository.ExerciseRepository
	err error
}

func (r failingExerciseDelete) Delete(context.Context, int64) error { return r.err }

func TestDeleteWorkout_ParentFailureKeepsLinks(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Leg Day", "", "")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Series: 3})
		require.NoError(t, err)
	}

	boom := errors.New("disk full")
	store := f.store
	store.Workouts = failingWorkoutDelete{WorkoutRepository: f.store.Workouts, err: boom}

	err = NewWorkoutService(store).DeleteWorkout(ctx, workout.ID)
	require.ErrorIs(t, err, boom)

	details, err := f.workouts.GetWorkoutDetails(ctx, workout.ID)
	require.NoError(t, err)
	assert.Len(t, details.Exercises, 2)
}

func TestDeleteExercise_ParentFailureKeepsLinksAndMuscles(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	quads, err := f.muscles.CreateMuscle(ctx, "Quadriceps", "")
	require.NoError(t, err)
	require.NoError(t, f.exercises.LinkMuscle(ctx, squat.ID, quads.ID))
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Leg Day", "", "")
	require.NoError(t, err)
	_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Series: 3})
	require.NoError(t, err)

	boom := errors.New("disk full")
	store := f.store
	store.Exercises = failingExerciseDelete{ExerciseRepository: f.store.Exercises, err: boom}

	err = NewExerciseService(store, nil, zap.NewNop()).DeleteExercise(ctx, squat.ID)
	require.ErrorIs(t, err, boom)

	details, err := f.workouts.GetWorkoutDetails(ctx, workout.ID)
	require.NoError(t, err)
	assert.Len(t, details.Exercises, 1)
	linked, err := f.muscles.ListMusclesForExercise(ctx, squat.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 1)
}

func TestAddToWorkout_Failures(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Leg Day", "", "")
	require.NoError(t, err)

	_, err = f.links.AddToWorkout(ctx, workout.ID, 9999, TrainingParams{Series: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.links.AddToWorkout(ctx, 9999, squat.ID, TrainingParams{Series: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Reps: -1})
	assert.ErrorIs(t, err, ErrValidationFailed)

	links, err := f.store.WorkoutExercises.ListByWorkoutID(ctx, workout.ID)
	require.NoError(t, err)
	assert.Empty(t, links, "failed adds leave no partial state")

	assert.ErrorIs(t, f.links.RemoveFromWorkout(ctx, 4242), ErrNotFound)
}

func TestRemoveFromWorkout(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	workout, err := f.workouts.CreateWorkout(ctx, 1, "Leg Day", "", "")
	require.NoError(t, err)
	first, err := f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Series: 1})
	require.NoError(t, err)
	_, err = f.links.AddToWorkout(ctx, workout.ID, squat.ID, TrainingParams{Series: 2})
	require.NoError(t, err)

	require.NoError(t, f.links.RemoveFromWorkout(ctx, first.ID))
	details, err := f.workouts.GetWorkoutDetails(ctx, workout.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, 2, details.Exercises[0].Series)
}

func TestWorkouts_OwnerScopedListing(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	mine, err := f.workouts.CreateWorkout(ctx, 7, "Leg Day", "", "")
	require.NoError(t, err)
	_, err = f.workouts.CreateWorkout(ctx, 8, "Push Day", "", "")
	require.NoError(t, err)

	list, err := f.workouts.ListWorkoutsForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	none, err := f.workouts.ListWorkoutsForUser(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.workouts.CreateWorkout(ctx, 0, "Anonymous", "", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateWorkout_KeepsOwner(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	w, err := f.workouts.CreateWorkout(ctx, 7, "Leg Day", "", "")
	require.NoError(t, err)
	updated, err := f.workouts.UpdateWorkout(ctx, w.ID, "Leg Day II", "heavier", "strength")
	require.NoError(t, err)
	assert.Equal(t, "Leg Day II", updated.Name)
	assert.Equal(t, "strength", updated.Type)
	assert.Equal(t, int64(7), updated.UserID)

	_, err = f.workouts.UpdateWorkout(ctx, 999, "x", "", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.workouts.UpdateWorkout(ctx, w.ID, " ", "", "")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestExerciseCatalog(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.exercises.CreateExercise(ctx, "  ", "blank")
	assert.ErrorIs(t, err, ErrValidationFailed)

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "legs")
	require.NoError(t, err)
	_, err = f.exercises.CreateExercise(ctx, "Bench", "chest")
	require.NoError(t, err)

	all, err := f.exercises.ListExercises(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	byName, err := f.exercises.ListExercises(ctx, "Squat")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, squat.ID, byName[0].ID)

	updated, err := f.exercises.UpdateExercise(ctx, squat.ID, "Back Squat", "")
	require.NoError(t, err)
	assert.Equal(t, squat.ID, updated.ID)
	assert.Equal(t, "Back Squat", updated.Name)
	assert.Empty(t, updated.Description)

	_, err = f.exercises.UpdateExercise(ctx, 999, "x", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.exercises.GetExerciseByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMuscleCatalogAndLinks(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)
	quads, err := f.muscles.CreateMuscle(ctx, "Quadriceps", "front thigh")
	require.NoError(t, err)
	glutes, err := f.muscles.CreateMuscle(ctx, "Glutes", "")
	require.NoError(t, err)

	require.NoError(t, f.exercises.LinkMuscle(ctx, squat.ID, quads.ID))
	require.NoError(t, f.exercises.LinkMuscle(ctx, squat.ID, glutes.ID))
	require.NoError(t, f.exercises.LinkMuscle(ctx, squat.ID, glutes.ID))
	assert.ErrorIs(t, f.exercises.LinkMuscle(ctx, squat.ID, 999), ErrNotFound)
	assert.ErrorIs(t, f.exercises.LinkMuscle(ctx, 999, quads.ID), ErrNotFound)

	linked, err := f.muscles.ListMusclesForExercise(ctx, squat.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)

	unknown, err := f.muscles.ListMusclesForExercise(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)

	require.NoError(t, f.muscles.DeleteMuscle(ctx, glutes.ID))
	linked, err = f.muscles.ListMusclesForExercise(ctx, squat.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, quads.ID, linked[0].ID)
	_, err = f.exercises.GetExerciseByID(ctx, squat.ID)
	assert.NoError(t, err, "deleting a muscle never touches exercises")

	require.NoError(t, f.exercises.UnlinkMuscle(ctx, squat.ID, quads.ID))
	assert.ErrorIs(t, f.exercises.UnlinkMuscle(ctx, squat.ID, quads.ID), ErrNotFound)

	updated, err := f.muscles.UpdateMuscle(ctx, quads.ID, "Quads", "")
	require.NoError(t, err)
	assert.Equal(t, "Quads", updated.Name)
	_, err = f.muscles.UpdateMuscle(ctx, 999, "x", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.muscles.DeleteMuscle(ctx, 999), ErrNotFound)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = f.auth.Register(ctx, "alice", "other@example.com", "different")
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := f.store.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)

	token, err := f.auth.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	uid, err := f.auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	_, err = f.auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = f.auth.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.auth.Register(ctx, "", "", "pw")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestParseToken_DistinctFailures(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, "bob", "", "pw")
	require.NoError(t, err)

	_, err = f.auth.ParseToken("")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = f.auth.ParseToken("definitely-not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	svc := f.auth.(*authService)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := f.auth.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	svc.now = time.Now
	_, err = f.auth.ParseToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewAuthService(f.store.Users, "another-secret", time.Hour, "trainerapp")
	foreign, err := other.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	_, err = f.auth.ParseToken(foreign)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	for _, err := range []error{ErrTokenMissing, ErrTokenMalformed, ErrTokenExpired, ErrTokenInvalid} {
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestMedia_WithoutStorage(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)

	_, err = f.exercises.RequestMediaUploadURL(ctx, squat.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	_, err = f.exercises.GetMediaDownloadURL(ctx, squat.ID)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestMedia_UploadConfirmReplaceDelete(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)

	_, err = f.exercises.GetMediaDownloadURL(ctx, squat.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.exercises.RequestMediaUploadURL(ctx, squat.ID, "application/pdf")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = f.exercises.RequestMediaUploadURL(ctx, 999, "video/mp4")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := f.exercises.RequestMediaUploadURL(ctx, squat.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ObjectKey, mediaPrefix(squat.ID)+"/"))
	assert.True(t, strings.HasSuffix(first.ObjectKey, ".mp4"))
	assert.Contains(t, first.UploadURL, first.ObjectKey)

	// not uploaded yet
	_, err = f.exercises.ConfirmMedia(ctx, squat.ID, first.ObjectKey, "video/mp4")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.exercises.ConfirmMedia(ctx, squat.ID, "exercises/999/x.mp4", "video/mp4")
	assert.ErrorIs(t, err, ErrValidationFailed)

	f.files.put(first.ObjectKey)
	updated, err := f.exercises.ConfirmMedia(ctx, squat.ID, first.ObjectKey, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, first.ObjectKey, updated.MediaKey)

	url, err := f.exercises.GetMediaDownloadURL(ctx, squat.ID)
	require.NoError(t, err)
	assert.Contains(t, url, first.ObjectKey)

	second, err := f.exercises.RequestMediaUploadURL(ctx, squat.ID, "image/png")
	require.NoError(t, err)
	f.files.put(second.ObjectKey)
	_, err = f.exercises.ConfirmMedia(ctx, squat.ID, second.ObjectKey, "image/png")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ObjectKey}, f.files.deleted)

	require.NoError(t, f.exercises.DeleteExercise(ctx, squat.ID))
	assert.Equal(t, []string{first.ObjectKey, second.ObjectKey}, f.files.deleted)
}

func TestMedia_DeleteFailureDoesNotFailExerciseDelete(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	squat, err := f.exercises.CreateExercise(ctx, "Squat", "")
	require.NoError(t, err)

	up, err := f.exercises.RequestMediaUploadURL(ctx, squat.ID, "video/webm")
	require.NoError(t, err)
	f.files.put(up.ObjectKey)
	_, err = f.exercises.ConfirmMedia(ctx, squat.ID, up.ObjectKey, "video/webm")
	require.NoError(t, err)

	f.files.failDelete = true
	require.NoError(t, f.exercises.DeleteExercise(ctx, squat.ID))
	_, err = f.exercises.GetExerciseByID(ctx, squat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMediaExtension(t *testing.T) {
	for in, want := range map[string]string{
		"video/mp4":                  "mp4",
		"VIDEO/QuickTime":            "quicktime",
		"video/x-matroska":           "matroska",
		"image/svg+xml":              "svg",
		"video/webm; codecs=\"vp9\"": "webm",
	} {
		got, err := mediaExtension(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "video", "video/", "text/plain"} {
		_, err := mediaExtension(in)
		assert.ErrorIs(t, err, ErrValidationFailed, in)
	}
}
