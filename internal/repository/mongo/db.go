package mongo

import (
	"context"
	"time"

	"ksaphier/trainerapp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Connect is lazy; ping the primary so a bad URI fails at startup.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// transactor runs a function inside a multi-document transaction.
// Transactions need a replica set or sharded cluster.
type transactor struct {
	client *mongo.Client
}

// NewTransactor returns a repository.Transactor backed by client sessions.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &transactor{client: client}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Join a transaction that is already running on this context.
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// NewStore wires every MongoDB repository against db.
func NewStore(client *mongo.Client, db *mongo.Database) repository.Store {
	return repository.Store{
		Users:            NewMongoUserRepository(db),
		Exercises:        NewMongoExerciseRepository(db),
		Muscles:          NewMongoMuscleRepository(db),
		Workouts:         NewMongoWorkoutRepository(db),
		WorkoutExercises: NewMongoWorkoutExerciseRepository(db),
		Tx:               NewTransactor(client),
	}
}

// EnsureIndexes creates the indexes of every collection. Call once during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := []func(context.Context, *mongo.Database) error{
		EnsureUserIndexes,
		EnsureExerciseIndexes,
		EnsureMuscleIndexes,
		EnsureWorkoutIndexes,
		EnsureWorkoutExerciseIndexes,
	}
	for _, fn := range ensure {
		if err := fn(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
