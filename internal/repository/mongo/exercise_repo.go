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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		db:         db,
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	id, err := nextID(ctx, r.db, exerciseCollectionName)
	if err != nil {
		return err
	}
	exercise.ID = id
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, exercise)
	return err
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// List returns the whole catalog in id order.
func (r *mongoExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{})
}

// ListByName returns exercises whose name matches exactly.
func (r *mongoExerciseRepository) ListByName(ctx context.Context, name string) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{"name": name})
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update overwrites name and description and bumps UpdatedAt.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        exercise.Name,
			"description": exercise.Description,
			"updatedAt":   now,
		},
	}
	if err := r.updateOne(ctx, exercise.ID, update); err != nil {
		return err
	}
	exercise.UpdatedAt = now
	return nil
}

// SetMedia records the confirmed demo object for an exercise.
func (r *mongoExerciseRepository) SetMedia(ctx context.Context, id int64, key, contentType string) error {
	update := bson.M{
		"$set": bson.M{
			"mediaKey":         key,
			"mediaContentType": contentType,
			"updatedAt":        time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, update)
}

func (r *mongoExerciseRepository) updateOne(ctx context.Context, id int64, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the exercise document only. Callers clear link rows first.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(exerciseCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
