package postgres

import (
	"context"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"

	"github.com/jackc/pgx/v5"
)

const exerciseColumns = `id, name, description, media_key, media_content_type, created_at, updated_at`

// ExerciseRepo implements repository.ExerciseRepository using PostgreSQL.
type ExerciseRepo struct{ db *DB }

// NewExerciseRepo constructs an exercise repository.
func NewExerciseRepo(db *DB) *ExerciseRepo { return &ExerciseRepo{db: db} }

func scanExercise(row pgx.Row, e *domain.Exercise) error {
	return row.Scan(&e.ID, &e.Name, &e.Description, &e.MediaKey, &e.MediaContentType, &e.CreatedAt, &e.UpdatedAt)
}

func collectExercises(rows pgx.Rows) ([]domain.Exercise, error) {
	defer rows.Close()
	exercises := []domain.Exercise{}
	for rows.Next() {
		var e domain.Exercise
		if err := scanExercise(rows, &e); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// Create inserts a new exercise and fills in its id and timestamps.
func (r *ExerciseRepo) Create(ctx context.Context, e *domain.Exercise) error {
	const q = `INSERT INTO exercises (name, description) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	return r.db.conn(ctx).QueryRow(ctx, q, e.Name, e.Description).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID selects an exercise by ID.
func (r *ExerciseRepo) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	const q = `SELECT ` + exerciseColumns + ` FROM exercises WHERE id = $1`
	var e domain.Exercise
	if err := scanExercise(r.db.conn(ctx).QueryRow(ctx, q, id), &e); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// List returns every exercise.
func (r *ExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	const q = `SELECT ` + exerciseColumns + ` FROM exercises ORDER BY id`
	rows, err := r.db.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectExercises(rows)
}

// ListByName returns exercises with exactly the given name.
func (r *ExerciseRepo) ListByName(ctx context.Context, name string) ([]domain.Exercise, error) {
	const q = `SELECT ` + exerciseColumns + ` FROM exercises WHERE name = $1 ORDER BY id`
	rows, err := r.db.conn(ctx).Query(ctx, q, name)
	if err != nil {
		return nil, err
	}
	return collectExercises(rows)
}

// Update overwrites name and description.
func (r *ExerciseRepo) Update(ctx context.Context, e *domain.Exercise) error {
	const q = `UPDATE exercises SET name = $2, description = $3, updated_at = now() WHERE id = $1 RETURNING updated_at`
	if err := r.db.conn(ctx).QueryRow(ctx, q, e.ID, e.Name, e.Description).Scan(&e.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

// SetMedia records the confirmed demo object for an exercise.
func (r *ExerciseRepo) SetMedia(ctx context.Context, id int64, key, contentType string) error {
	const q = `UPDATE exercises SET media_key = $2, media_content_type = $3, updated_at = now() WHERE id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, id, key, contentType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the exercise row only; dependents are the caller's concern.
func (r *ExerciseRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM exercises WHERE id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
