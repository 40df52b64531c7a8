package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository handles user persistence
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetEmailVerified(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	users *mongo.Collection
}

// NewRepository creates a Mongo-backed user repository
func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{users: db.Collection("users")}
}

func (r *mongoRepository) Create(ctx context.Context, user *User) error {
	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoRepository) SetEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"emailVerified": true, "updatedAt": time.Now()},
		"$unset": bson.M{"verificationToken": ""},
	})
	return err
}
