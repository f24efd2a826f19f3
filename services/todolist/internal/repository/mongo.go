package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/models"
)

const mongoCollection = "todolists"

// MongoToDoListRepository хранит один документ на пользователя:
// {userId, tasks: [{_id, title, subtasks: [...]}], createdAt, updatedAt}
type MongoToDoListRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoToDoListRepository(ctx context.Context, uri, database string) (*MongoToDoListRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)

	// Ровно один документ на userId
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("userId_unique"),
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create userId index: %w", err)
	}

	return &MongoToDoListRepository{client: client, coll: coll}, nil
}

func (r *MongoToDoListRepository) FindByUserID(ctx context.Context, userID string) (*models.ToDoList, error) {
	var list models.ToDoList
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&list)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list.Normalize()
	return &list, nil
}

func (r *MongoToDoListRepository) CreateIfAbsent(ctx context.Context, list *models.ToDoList) (*models.ToDoList, error) {
	doc := list.Clone()
	doc.Normalize()
	created, updated := timestamps(doc)
	doc.CreatedAt, doc.UpdatedAt = created, updated

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": list.UserID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	// Параллельный upsert мог вставить документ раньше нас
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	stored, err := r.FindByUserID(ctx, list.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("todolist for user %s vanished after upsert", list.UserID)
	}
	return stored, nil
}

func (r *MongoToDoListRepository) Save(ctx context.Context, list *models.ToDoList) error {
	doc := list.Clone()
	doc.Normalize()
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}

	update := bson.M{
		"$set":         bson.M{"tasks": doc.Tasks, "updatedAt": doc.UpdatedAt},
		"$setOnInsert": bson.M{"createdAt": doc.UpdatedAt},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"userId": list.UserID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoToDoListRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoToDoListRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
