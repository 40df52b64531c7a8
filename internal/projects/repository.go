package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists projects
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Project, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Project, error)
	List(ctx context.Context, filter ListFilter) ([]*Project, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	IncrementBidCount(ctx context.Context, id primitive.ObjectID, delta int) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a project repository backed by MongoDB
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("projects")}
}

func (r *mongoRepository) Create(ctx context.Context, project *Project) error {
	now := time.Now()
	project.ID = primitive.NewObjectID()
	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	var project Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &project, nil
}

func (r *mongoRepository) ListByCreator(ctx context.Context, creatorID string) ([]*Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": creatorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects by creator: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) List(ctx context.Context, filter ListFilter) ([]*Project, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	} else {
		query["status"] = bson.M{"$in": []string{StatusOpen, StatusActive}}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.MaxBudget > 0 {
		query["budget"] = bson.M{"$lte": filter.MaxBudget}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoRepository) IncrementBidCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"bidCount": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("update project bid count: %w", err)
	}
	return nil
}
