package postgres

import (
	"context"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"
)

const workoutColumns = `id, name, description, type, user_id, created_at, updated_at`

// WorkoutRepo implements repository.WorkoutRepository using PostgreSQL.
type WorkoutRepo struct{ db *DB }

// NewWorkoutRepo constructs a workout repository.
func NewWorkoutRepo(db *DB) *WorkoutRepo { return &WorkoutRepo{db: db} }

// Create inserts a workout. UserID must already be stamped by the caller.
func (r *WorkoutRepo) Create(ctx context.Context, w *domain.Workout) error {
	const q = `INSERT INTO workouts (name, description, type, user_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.db.conn(ctx).QueryRow(ctx, q, w.Name, w.Description, w.Type, w.UserID).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if isForeignKeyViolation(err) {
		return repository.ErrInvalidReference
	}
	return err
}

func (r *WorkoutRepo) GetByID(ctx context.Context, id int64) (*domain.Workout, error) {
	const q = `SELECT ` + workoutColumns + ` FROM workouts WHERE id = $1`
	var w domain.Workout
	err := r.db.conn(ctx).QueryRow(ctx, q, id).Scan(&w.ID, &w.Name, &w.Description, &w.Type, &w.UserID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *WorkoutRepo) ListByUserID(ctx context.Context, userID int64) ([]domain.Workout, error) {
	const q = `SELECT ` + workoutColumns + ` FROM workouts WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.conn(ctx).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := []domain.Workout{}
	for rows.Next() {
		var w domain.Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Type, &w.UserID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// Update overwrites name, description and type; the owner never changes.
func (r *WorkoutRepo) Update(ctx context.Context, w *domain.Workout) error {
	const q = `UPDATE workouts SET name = $2, description = $3, type = $4, updated_at = now() WHERE id = $1 RETURNING updated_at`
	if err := r.db.conn(ctx).QueryRow(ctx, q, w.ID, w.Name, w.Description, w.Type).Scan(&w.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *WorkoutRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM workouts WHERE id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
