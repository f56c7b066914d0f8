package postgres

import (
	"context"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"
)

// WorkoutExerciseRepo implements repository.WorkoutExerciseRepository using PostgreSQL.
type WorkoutExerciseRepo struct{ db *DB }

// NewWorkoutExerciseRepo constructs a link-row repository.
func NewWorkoutExerciseRepo(db *DB) *WorkoutExerciseRepo { return &WorkoutExerciseRepo{db: db} }

func (r *WorkoutExerciseRepo) Create(ctx context.Context, l *domain.WorkoutExercise) error {
	const q = `INSERT INTO workout_exercises (workout_id, exercise_id, series, reps, rest, weight) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.conn(ctx).QueryRow(ctx, q, l.WorkoutID, l.ExerciseID, l.Series, l.Reps, l.Rest, l.Weight).Scan(&l.ID, &l.CreatedAt)
	if isForeignKeyViolation(err) {
		return repository.ErrInvalidReference
	}
	return err
}

func (r *WorkoutExerciseRepo) GetByID(ctx context.Context, id int64) (*domain.WorkoutExercise, error) {
	const q = `SELECT id, workout_id, exercise_id, series, reps, rest, weight, created_at FROM workout_exercises WHERE id = $1`
	var l domain.WorkoutExercise
	err := r.db.conn(ctx).QueryRow(ctx, q, id).Scan(&l.ID, &l.WorkoutID, &l.ExerciseID, &l.Series, &l.Reps, &l.Rest, &l.Weight, &l.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// ListByWorkoutID returns link rows ordered by id, i.e. insertion order.
func (r *WorkoutExerciseRepo) ListByWorkoutID(ctx context.Context, workoutID int64) ([]domain.WorkoutExercise, error) {
	const q = `SELECT id, workout_id, exercise_id, series, reps, rest, weight, created_at FROM workout_exercises WHERE workout_id = $1 ORDER BY id`
	rows, err := r.db.conn(ctx).Query(ctx, q, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.WorkoutExercise{}
	for rows.Next() {
		var l domain.WorkoutExercise
		if err := rows.Scan(&l.ID, &l.WorkoutID, &l.ExerciseID, &l.Series, &l.Reps, &l.Rest, &l.Weight, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *WorkoutExerciseRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM workout_exercises WHERE id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WorkoutExerciseRepo) DeleteByWorkoutID(ctx context.Context, workoutID int64) (int64, error) {
	const q = `DELETE FROM workout_exercises WHERE workout_id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, workoutID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *WorkoutExerciseRepo) DeleteByExerciseID(ctx context.Context, exerciseID int64) (int64, error) {
	const q = `DELETE FROM workout_exercises WHERE exercise_id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, exerciseID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
