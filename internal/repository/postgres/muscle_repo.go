package postgres

import (
	"context"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"

	"github.com/jackc/pgx/v5"
)

// MuscleRepo implements repository.MuscleRepository using PostgreSQL.
type MuscleRepo struct{ db *DB }

// NewMuscleRepo constructs a muscle repository.
func NewMuscleRepo(db *DB) *MuscleRepo { return &MuscleRepo{db: db} }

func collectMuscles(rows pgx.Rows) ([]domain.Muscle, error) {
	defer rows.Close()
	muscles := []domain.Muscle{}
	for rows.Next() {
		var m domain.Muscle
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		muscles = append(muscles, m)
	}
	return muscles, rows.Err()
}

func (r *MuscleRepo) Create(ctx context.Context, m *domain.Muscle) error {
	const q = `INSERT INTO muscles (name, description) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	return r.db.conn(ctx).QueryRow(ctx, q, m.Name, m.Description).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MuscleRepo) GetByID(ctx context.Context, id int64) (*domain.Muscle, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM muscles WHERE id = $1`
	var m domain.Muscle
	err := r.db.conn(ctx).QueryRow(ctx, q, id).Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MuscleRepo) List(ctx context.Context) ([]domain.Muscle, error) {
	const q = `SELECT id, name, description, created_at, updated_at FROM muscles ORDER BY id`
	rows, err := r.db.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectMuscles(rows)
}

func (r *MuscleRepo) Update(ctx context.Context, m *domain.Muscle) error {
	const q = `UPDATE muscles SET name = $2, description = $3, updated_at = now() WHERE id = $1 RETURNING updated_at`
	if err := r.db.conn(ctx).QueryRow(ctx, q, m.ID, m.Name, m.Description).Scan(&m.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *MuscleRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM muscles WHERE id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByExerciseID walks the join from the exercise side.
func (r *MuscleRepo) ListByExerciseID(ctx context.Context, exerciseID int64) ([]domain.Muscle, error) {
	const q = `SELECT m.id, m.name, m.description, m.created_at, m.updated_at FROM muscles m JOIN exercise_muscles em ON em.muscle_id = m.id WHERE em.exercise_id = $1 ORDER BY m.id`
	rows, err := r.db.conn(ctx).Query(ctx, q, exerciseID)
	if err != nil {
		return nil, err
	}
	return collectMuscles(rows)
}

func (r *MuscleRepo) Link(ctx context.Context, exerciseID, muscleID int64) error {
	const q = `INSERT INTO exercise_muscles (exercise_id, muscle_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.conn(ctx).Exec(ctx, q, exerciseID, muscleID)
	if isForeignKeyViolation(err) {
		return repository.ErrInvalidReference
	}
	return err
}

func (r *MuscleRepo) Unlink(ctx context.Context, exerciseID, muscleID int64) error {
	const q = `DELETE FROM exercise_muscles WHERE exercise_id = $1 AND muscle_id = $2`
	tag, err := r.db.conn(ctx).Exec(ctx, q, exerciseID, muscleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MuscleRepo) UnlinkExercise(ctx context.Context, exerciseID int64) (int64, error) {
	const q = `DELETE FROM exercise_muscles WHERE exercise_id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, exerciseID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MuscleRepo) UnlinkMuscle(ctx context.Context, muscleID int64) (int64, error) {
	const q = `DELETE FROM exercise_muscles WHERE muscle_id = $1`
	tag, err := r.db.conn(ctx).Exec(ctx, q, muscleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
