// Package memory is an in-process implementation of the repository
// interfaces. It backs the "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"
)

type pair struct{ exerciseID, muscleID int64 }

type tables struct {
	users     map[int64]domain.User
	exercises map[int64]domain.Exercise
	muscles   map[int64]domain.Muscle
	joins     map[pair]struct{}
	workouts  map[int64]domain.Workout
	links     map[int64]domain.WorkoutExercise
	seq       int64
}

func (t *tables) clone() tables {
	c := tables{
		users:     make(map[int64]domain.User, len(t.users)),
		exercises: make(map[int64]domain.Exercise, len(t.exercises)),
		muscles:   make(map[int64]domain.Muscle, len(t.muscles)),
		joins:     make(map[pair]struct{}, len(t.joins)),
		workouts:  make(map[int64]domain.Workout, len(t.workouts)),
		links:     make(map[int64]domain.WorkoutExercise, len(t.links)),
		seq:       t.seq,
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.exercises {
		c.exercises[k] = v
	}
	for k, v := range t.muscles {
		c.muscles[k] = v
	}
	for k := range t.joins {
		c.joins[k] = struct{}{}
	}
	for k, v := range t.workouts {
		c.workouts[k] = v
	}
	for k, v := range t.links {
		c.links[k] = v
	}
	return c
}

// Store holds every table behind one mutex. Ids come from a single
// increasing sequence, so ordering by id is insertion order.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data tables
	now  func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		data: tables{
			users:     map[int64]domain.User{},
			exercises: map[int64]domain.Exercise{},
			muscles:   map[int64]domain.Muscle{},
			joins:     map[pair]struct{}{},
			workouts:  map[int64]domain.Workout{},
			links:     map[int64]domain.WorkoutExercise{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:            userRepo{s},
		Exercises:        exerciseRepo{s},
		Muscles:          muscleRepo{s},
		Workouts:         workoutRepo{s},
		WorkoutExercises: workoutExerciseRepo{s},
		Tx:               s,
	}
}

// WithinTransaction serialises transactions and restores a snapshot when fn
// fails or panics. Writes made outside a transaction while one is running
// are not isolated from it.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	restore := func() {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		restore()
		return err
	}
	return nil
}

type txKey struct{}

func (s *Store) nextID() int64 {
	s.data.seq++
	return s.data.seq
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.nextID()
	u.CreatedAt = r.s.now()
	r.s.data.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type exerciseRepo struct{ s *Store }

func (r exerciseRepo) Create(_ context.Context, e *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID()
	e.CreatedAt = r.s.now()
	e.UpdatedAt = e.CreatedAt
	r.s.data.exercises[e.ID] = *e
	return nil
}

func (r exerciseRepo) GetByID(_ context.Context, id int64) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.data.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r exerciseRepo) List(_ context.Context) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Exercise{}
	for _, id := range sortedKeys(r.s.data.exercises) {
		out = append(out, r.s.data.exercises[id])
	}
	return out, nil
}

func (r exerciseRepo) ListByName(_ context.Context, name string) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Exercise{}
	for _, id := range sortedKeys(r.s.data.exercises) {
		if e := r.s.data.exercises[id]; e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r exerciseRepo) Update(_ context.Context, e *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.exercises[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name = e.Name
	cur.Description = e.Description
	cur.UpdatedAt = r.s.now()
	r.s.data.exercises[e.ID] = cur
	e.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r exerciseRepo) SetMedia(_ context.Context, id int64, key, contentType string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.MediaKey = key
	cur.MediaContentType = contentType
	cur.UpdatedAt = r.s.now()
	r.s.data.exercises[id] = cur
	return nil
}

// Delete enforces the same foreign keys the postgres schema does.
func (r exerciseRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	for _, l := range r.s.data.links {
		if l.ExerciseID == id {
			return repository.ErrInvalidReference
		}
	}
	for p := range r.s.data.joins {
		if p.exerciseID == id {
			return repository.ErrInvalidReference
		}
	}
	delete(r.s.data.exercises, id)
	return nil
}

type muscleRepo struct{ s *Store }

func (r muscleRepo) Create(_ context.Context, m *domain.Muscle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.nextID()
	m.CreatedAt = r.s.now()
	m.UpdatedAt = m.CreatedAt
	r.s.data.muscles[m.ID] = *m
	return nil
}

func (r muscleRepo) GetByID(_ context.Context, id int64) (*domain.Muscle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.muscles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r muscleRepo) List(_ context.Context) ([]domain.Muscle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Muscle{}
	for _, id := range sortedKeys(r.s.data.muscles) {
		out = append(out, r.s.data.muscles[id])
	}
	return out, nil
}

func (r muscleRepo) Update(_ context.Context, m *domain.Muscle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.muscles[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name = m.Name
	cur.Description = m.Description
	cur.UpdatedAt = r.s.now()
	r.s.data.muscles[m.ID] = cur
	m.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r muscleRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.muscles[id]; !ok {
		return repository.ErrNotFound
	}
	for p := range r.s.data.joins {
		if p.muscleID == id {
			return repository.ErrInvalidReference
		}
	}
	delete(r.s.data.muscles, id)
	return nil
}

func (r muscleRepo) ListByExerciseID(_ context.Context, exerciseID int64) ([]domain.Muscle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Muscle{}
	for _, id := range sortedKeys(r.s.data.muscles) {
		if _, ok := r.s.data.joins[pair{exerciseID, id}]; ok {
			out = append(out, r.s.data.muscles[id])
		}
	}
	return out, nil
}

func (r muscleRepo) Link(_ context.Context, exerciseID, muscleID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.exercises[exerciseID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.s.data.muscles[muscleID]; !ok {
		return repository.ErrInvalidReference
	}
	r.s.data.joins[pair{exerciseID, muscleID}] = struct{}{}
	return nil
}

func (r muscleRepo) Unlink(_ context.Context, exerciseID, muscleID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := pair{exerciseID, muscleID}
	if _, ok := r.s.data.joins[p]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.joins, p)
	return nil
}

func (r muscleRepo) UnlinkExercise(_ context.Context, exerciseID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for p := range r.s.data.joins {
		if p.exerciseID == exerciseID {
			delete(r.s.data.joins, p)
			n++
		}
	}
	return n, nil
}

func (r muscleRepo) UnlinkMuscle(_ context.Context, muscleID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for p := range r.s.data.joins {
		if p.muscleID == muscleID {
			delete(r.s.data.joins, p)
			n++
		}
	}
	return n, nil
}

type workoutRepo struct{ s *Store }

func (r workoutRepo) Create(_ context.Context, w *domain.Workout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w.ID = r.s.nextID()
	w.CreatedAt = r.s.now()
	w.UpdatedAt = w.CreatedAt
	r.s.data.workouts[w.ID] = *w
	return nil
}

func (r workoutRepo) GetByID(_ context.Context, id int64) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.data.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r workoutRepo) ListByUserID(_ context.Context, userID int64) ([]domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Workout{}
	for _, id := range sortedKeys(r.s.data.workouts) {
		if w := r.s.data.workouts[id]; w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r workoutRepo) Update(_ context.Context, w *domain.Workout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.workouts[w.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name = w.Name
	cur.Description = w.Description
	cur.Type = w.Type
	cur.UpdatedAt = r.s.now()
	r.s.data.workouts[w.ID] = cur
	w.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r workoutRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	for _, l := range r.s.data.links {
		if l.WorkoutID == id {
			return repository.ErrInvalidReference
		}
	}
	delete(r.s.data.workouts, id)
	return nil
}

type workoutExerciseRepo struct{ s *Store }

func (r workoutExerciseRepo) Create(_ context.Context, l *domain.WorkoutExercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.workouts[l.WorkoutID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.s.data.exercises[l.ExerciseID]; !ok {
		return repository.ErrInvalidReference
	}
	l.ID = r.s.nextID()
	l.CreatedAt = r.s.now()
	r.s.data.links[l.ID] = *l
	return nil
}

func (r workoutExerciseRepo) GetByID(_ context.Context, id int64) (*domain.WorkoutExercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.data.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r workoutExerciseRepo) ListByWorkoutID(_ context.Context, workoutID int64) ([]domain.WorkoutExercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.WorkoutExercise{}
	for _, id := range sortedKeys(r.s.data.links) {
		if l := r.s.data.links[id]; l.WorkoutID == workoutID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r workoutExerciseRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.links[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.links, id)
	return nil
}

func (r workoutExerciseRepo) DeleteByWorkoutID(_ context.Context, workoutID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, l := range r.s.data.links {
		if l.WorkoutID == workoutID {
			delete(r.s.data.links, id)
			n++
		}
	}
	return n, nil
}

func (r workoutExerciseRepo) DeleteByExerciseID(_ context.Context, exerciseID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, l := range r.s.data.links {
		if l.ExerciseID == exerciseID {
			delete(r.s.data.links, id)
			n++
		}
	}
	return n, nil
}

// RemoveExerciseRow deletes an exercise without touching its dependents,
// simulating an out-of-band delete that bypassed the cascade.
func (s *Store) RemoveExerciseRow(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.exercises, id)
}
