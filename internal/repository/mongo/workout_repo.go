// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		db:         db,
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. UserID must already be stamped by the caller.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	id, err := nextID(ctx, r.db, workoutCollectionName)
	if err != nil {
		return err
	}
	workout.ID = id
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, workout)
	return err
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id int64) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByUserID retrieves the workouts owned by a user in id order.
func (r *mongoWorkoutRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update modifies name, description and type. The owner never changes.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        workout.Name,
			"description": workout.Description,
			"type":        workout.Type,
			"updatedAt":   now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = now
	return nil
}

// Delete removes the workout document only. Callers clear link rows first.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates indexes for the workouts collection.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(workoutCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
