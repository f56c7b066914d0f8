package mongo

import (
	"context"
	"errors"
	"time"

	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutExerciseCollectionName = "workout_exercises"

// mongoWorkoutExerciseRepository implements repository.WorkoutExerciseRepository
type mongoWorkoutExerciseRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoWorkoutExerciseRepository creates a new link-row repository backed by MongoDB.
func NewMongoWorkoutExerciseRepository(db *mongo.Database) repository.WorkoutExerciseRepository {
	return &mongoWorkoutExerciseRepository{
		db:         db,
		collection: db.Collection(workoutExerciseCollectionName),
	}
}

// Create inserts a link row. MongoDB has no foreign keys, so both
// references are checked before the insert.
func (r *mongoWorkoutExerciseRepository) Create(ctx context.Context, link *domain.WorkoutExercise) error {
	ok, err := exists(ctx, r.db.Collection(workoutCollectionName), link.WorkoutID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidReference
	}
	if ok, err = exists(ctx, r.db.Collection(exerciseCollectionName), link.ExerciseID); err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidReference
	}

	id, err := nextID(ctx, r.db, workoutExerciseCollectionName)
	if err != nil {
		return err
	}
	link.ID = id
	link.CreatedAt = time.Now().UTC()

	_, err = r.collection.InsertOne(ctx, link)
	return err
}

// GetByID retrieves a link row by its ID.
func (r *mongoWorkoutExerciseRepository) GetByID(ctx context.Context, id int64) (*domain.WorkoutExercise, error) {
	var link domain.WorkoutExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// ListByWorkoutID returns the workout's link rows in insertion order.
func (r *mongoWorkoutExerciseRepository) ListByWorkoutID(ctx context.Context, workoutID int64) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	links := []domain.WorkoutExercise{}
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Delete removes a single link row.
func (r *mongoWorkoutExerciseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutExerciseRepository) DeleteByWorkoutID(ctx context.Context, workoutID int64) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoWorkoutExerciseRepository) DeleteByExerciseID(ctx context.Context, exerciseID int64) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": exerciseID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureWorkoutExerciseIndexes creates indexes for the link collection.
func EnsureWorkoutExerciseIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(workoutExerciseCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
