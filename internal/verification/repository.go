package verification

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

// Repository persists verification state on company documents
type Repository interface {
	GetCompany(ctx context.Context, id primitive.ObjectID) (*Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
	SetFieldPending(ctx context.Context, id primitive.ObjectID, field, value string) error
	SetFieldResult(ctx context.Context, id primitive.ObjectID, field string, status FieldStatus, result Result) error
	SetFieldStatus(ctx context.Context, id primitive.ObjectID, field string, status FieldStatus) error
	SetOverall(ctx context.Context, id primitive.ObjectID, overall int) error
	RecordAudit(ctx context.Context, entry *AuditEntry) error
}

type mongoRepository struct {
	users *mongo.Collection
	audit *mongo.Collection
}

// NewRepository creates a Mongo-backed verification repository
func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		users: db.Collection("users"),
		audit: db.Collection("admin_audit"),
	}
}

func (r *mongoRepository) GetCompany(ctx context.Context, id primitive.ObjectID) (*Company, error) {
	var company Company
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&company)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *mongoRepository) ListCompanies(ctx context.Context) ([]Company, error) {
	opts := options.Find().SetSort(bson.D{{Key: "companyName", Value: 1}})
	cursor, err := r.users.Find(ctx, bson.M{"userType": bson.M{"$in": []string{"tender", "bidder"}}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *mongoRepository) SetFieldPending(ctx context.Context, id primitive.ObjectID, field, value string) error {
	update := bson.M{
		"verificationStatus." + field: StatusPending,
		field + "Number":              value,
		"updatedAt":                   time.Now(),
	}
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *mongoRepository) SetFieldResult(ctx context.Context, id primitive.ObjectID, field string, status FieldStatus, result Result) error {
	set := bson.M{
		"verificationStatus." + field: status,
		"updatedAt":                   time.Now(),
	}
	unset := bson.M{}

	if result.Success && result.Data != nil {
		set["verificationData."+field] = result.Data
		unset["verificationErrors."+field] = ""
	}
	if !result.Success && result.Error != "" {
		set["verificationErrors."+field] = result.Error
		unset["verificationData."+field] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *mongoRepository) SetFieldStatus(ctx context.Context, id primitive.ObjectID, field string, status FieldStatus) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"verificationStatus." + field: status,
		"updatedAt":                   time.Now(),
	}})
	return err
}

func (r *mongoRepository) SetOverall(ctx context.Context, id primitive.ObjectID, overall int) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"verificationStatus.overall": overall,
	}})
	return err
}

func (r *mongoRepository) RecordAudit(ctx context.Context, entry *AuditEntry) error {
	if _, err := r.audit.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
