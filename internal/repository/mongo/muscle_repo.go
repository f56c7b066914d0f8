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

const (
	muscleCollectionName         = "muscles"
	exerciseMuscleCollectionName = "exercise_muscles"
)

// mongoMuscleRepository implements repository.MuscleRepository. The
// Exercise<->Muscle relation is kept in its own collection of pairs.
type mongoMuscleRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	joins      *mongo.Collection
}

// NewMongoMuscleRepository creates a new Muscle repository backed by MongoDB.
func NewMongoMuscleRepository(db *mongo.Database) repository.MuscleRepository {
	return &mongoMuscleRepository{
		db:         db,
		collection: db.Collection(muscleCollectionName),
		joins:      db.Collection(exerciseMuscleCollectionName),
	}
}

func (r *mongoMuscleRepository) Create(ctx context.Context, muscle *domain.Muscle) error {
	id, err := nextID(ctx, r.db, muscleCollectionName)
	if err != nil {
		return err
	}
	muscle.ID = id
	now := time.Now().UTC()
	muscle.CreatedAt = now
	muscle.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, muscle)
	return err
}

func (r *mongoMuscleRepository) GetByID(ctx context.Context, id int64) (*domain.Muscle, error) {
	var muscle domain.Muscle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&muscle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &muscle, nil
}

func (r *mongoMuscleRepository) List(ctx context.Context) ([]domain.Muscle, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoMuscleRepository) find(ctx context.Context, filter bson.M) ([]domain.Muscle, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	muscles := []domain.Muscle{}
	if err = cursor.All(ctx, &muscles); err != nil {
		return nil, err
	}
	return muscles, nil
}

func (r *mongoMuscleRepository) Update(ctx context.Context, muscle *domain.Muscle) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        muscle.Name,
			"description": muscle.Description,
			"updatedAt":   now,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": muscle.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	muscle.UpdatedAt = now
	return nil
}

func (r *mongoMuscleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByExerciseID resolves the join in two queries: pairs first, then muscles.
func (r *mongoMuscleRepository) ListByExerciseID(ctx context.Context, exerciseID int64) ([]domain.Muscle, error) {
	cursor, err := r.joins.Find(ctx, bson.M{"exerciseId": exerciseID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pairs []domain.ExerciseMuscle
	if err = cursor.All(ctx, &pairs); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return []domain.Muscle{}, nil
	}

	ids := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, p.MuscleID)
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// Link upserts the pair, so linking twice is a no-op.
func (r *mongoMuscleRepository) Link(ctx context.Context, exerciseID, muscleID int64) error {
	ok, err := exists(ctx, r.db.Collection(exerciseCollectionName), exerciseID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidReference
	}
	if ok, err = exists(ctx, r.collection, muscleID); err != nil {
		return err
	}
	if !ok {
		return repository.ErrInvalidReference
	}

	pair := domain.ExerciseMuscle{ExerciseID: exerciseID, MuscleID: muscleID}
	_, err = r.joins.UpdateOne(ctx,
		bson.M{"exerciseId": exerciseID, "muscleId": muscleID},
		bson.M{"$setOnInsert": pair},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race against the unique index; the pair exists.
		return nil
	}
	return err
}

func (r *mongoMuscleRepository) Unlink(ctx context.Context, exerciseID, muscleID int64) error {
	result, err := r.joins.DeleteOne(ctx, bson.M{"exerciseId": exerciseID, "muscleId": muscleID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMuscleRepository) UnlinkExercise(ctx context.Context, exerciseID int64) (int64, error) {
	result, err := r.joins.DeleteMany(ctx, bson.M{"exerciseId": exerciseID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoMuscleRepository) UnlinkMuscle(ctx context.Context, muscleID int64) (int64, error) {
	result, err := r.joins.DeleteMany(ctx, bson.M{"muscleId": muscleID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureMuscleIndexes creates the unique pair index on the join collection.
func EnsureMuscleIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}, {Key: "muscleId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "muscleId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(exerciseMuscleCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
