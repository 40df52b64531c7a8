package bids

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tenderdesk/tender-portal-backend/internal/projects"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

// Placement updates one bid's rank and percentile
type Placement struct {
	BidID      primitive.ObjectID
	Rank       int
	Percentile int
}

// AwardOutcome reports what an award transaction changed
type AwardOutcome struct {
	Awarded  *Bid
	Rejected []*Bid
}

// Repository persists bids
type Repository interface {
	Insert(ctx context.Context, bid *Bid) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Bid, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Bid, error)
	ListByProjectRanked(ctx context.Context, projectID primitive.ObjectID) ([]*Bid, error)
	ListByBidder(ctx context.Context, bidderID string) ([]*Bid, error)
	FindByProjectAndBidder(ctx context.Context, projectID primitive.ObjectID, bidderID string) (*Bid, error)
	FindByProjectAndCompany(ctx context.Context, projectID primitive.ObjectID, company string) (*Bid, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ApplyPlacements(ctx context.Context, placements []Placement) error
	ActiveBidderIDs(ctx context.Context, projectID primitive.ObjectID) ([]string, error)
	Award(ctx context.Context, projectID, bidID primitive.ObjectID) (*AwardOutcome, error)
}

type mongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	projects   *mongo.Collection
}

// NewMongoRepository creates a bid repository backed by MongoDB. The
// client is kept for multi-collection transactions.
func NewMongoRepository(client *mongo.Client, db *mongo.Database) Repository {
	return &mongoRepository{
		client:     client,
		collection: db.Collection("bids"),
		projects:   db.Collection("projects"),
	}
}

func (r *mongoRepository) Insert(ctx context.Context, bid *Bid) error {
	now := time.Now()
	bid.ID = primitive.NewObjectID()
	bid.CreatedAt = now
	bid.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, bid); err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Bid, error) {
	var bid Bid
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bid: %w", err)
	}
	return &bid, nil
}

func (r *mongoRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Bid, error) {
	return r.list(ctx, bson.M{"projectId": projectID}, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *mongoRepository) ListByProjectRanked(ctx context.Context, projectID primitive.ObjectID) ([]*Bid, error) {
	return r.list(ctx, bson.M{"projectId": projectID}, bson.D{{Key: "rank", Value: 1}})
}

func (r *mongoRepository) ListByBidder(ctx context.Context, bidderID string) ([]*Bid, error) {
	return r.list(ctx, bson.M{"bidderId": bidderID}, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *mongoRepository) list(ctx context.Context, filter bson.M, sort bson.D) ([]*Bid, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Bid
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode bids: %w", err)
	}
	return out, nil
}

func (r *mongoRepository) FindByProjectAndBidder(ctx context.Context, projectID primitive.ObjectID, bidderID string) (*Bid, error) {
	return r.findOne(ctx, bson.M{"projectId": projectID, "bidderId": bidderID})
}

func (r *mongoRepository) FindByProjectAndCompany(ctx context.Context, projectID primitive.ObjectID, company string) (*Bid, error) {
	return r.findOne(ctx, bson.M{"projectId": projectID, "bidderCompany": company})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Bid, error) {
	var bid Bid
	err := r.collection.FindOne(ctx, filter).Decode(&bid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bid: %w", err)
	}
	return &bid, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update bid: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete bid: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyPlacements writes rank and percentile for a project's bids in one
// bulk write.
func (r *mongoRepository) ApplyPlacements(ctx context.Context, placements []Placement) error {
	if len(placements) == 0 {
		return nil
	}
	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(placements))
	for _, p := range placements {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.BidID}).
			SetUpdate(bson.M{"$set": bson.M{
				"rank":       p.Rank,
				"percentile": p.Percentile,
				"updatedAt":  now,
			}}))
	}
	if _, err := r.collection.BulkWrite(ctx, writes); err != nil {
		return fmt.Errorf("apply bid placements: %w", err)
	}
	return nil
}

func (r *mongoRepository) ActiveBidderIDs(ctx context.Context, projectID primitive.ObjectID) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "bidderId", bson.M{
		"projectId": projectID,
		"status":    bson.M{"$in": []string{StatusSubmitted, StatusShortlisted}},
	})
	if err != nil {
		return nil, fmt.Errorf("list project bidders: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Award settles a project in a single transaction: the target bid becomes
// awarded, every sibling becomes rejected, and the project flips to
// awarded. The project update is a compare-and-set on its current status
// so two concurrent awards cannot both commit.
func (r *mongoRepository) Award(ctx context.Context, projectID, bidID primitive.ObjectID) (*AwardOutcome, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start award session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		var bid Bid
		err := r.collection.FindOne(sc, bson.M{
			"_id":       bidID,
			"projectId": projectID,
		}).Decode(&bid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: bid not found", apperrors.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("find bid: %w", err)
		}
		if bid.Status != StatusSubmitted && bid.Status != StatusShortlisted {
			return nil, fmt.Errorf("%w: bid is already %s", apperrors.ErrConflict, bid.Status)
		}

		projectUpdate, err := r.projects.UpdateOne(sc,
			bson.M{
				"_id":    projectID,
				"status": bson.M{"$in": []string{projects.StatusOpen, projects.StatusActive}},
			},
			bson.M{"$set": bson.M{
				"status":         projects.StatusAwarded,
				"awardedTo":      bid.BidderID,
				"awardedCompany": bid.BidderCompany,
				"awardedAmount":  bid.Amount,
				"awardedAt":      now,
				"updatedAt":      now,
			}})
		if err != nil {
			return nil, fmt.Errorf("award project: %w", err)
		}
		if projectUpdate.MatchedCount == 0 {
			return nil, fmt.Errorf("%w: project is no longer accepting an award", apperrors.ErrConflict)
		}

		if _, err := r.collection.UpdateOne(sc,
			bson.M{"_id": bidID},
			bson.M{"$set": bson.M{"status": StatusAwarded, "updatedAt": now}}); err != nil {
			return nil, fmt.Errorf("award bid: %w", err)
		}

		if _, err := r.collection.UpdateMany(sc,
			bson.M{
				"projectId": projectID,
				"_id":       bson.M{"$ne": bidID},
				"status":    bson.M{"$ne": StatusRejected},
			},
			bson.M{"$set": bson.M{
				"status":          StatusRejected,
				"rejectionReason": "Project awarded to another bidder",
				"updatedAt":       now,
			}}); err != nil {
			return nil, fmt.Errorf("reject sibling bids: %w", err)
		}

		cursor, err := r.collection.Find(sc, bson.M{
			"projectId": projectID,
			"_id":       bson.M{"$ne": bidID},
		})
		if err != nil {
			return nil, fmt.Errorf("list sibling bids: %w", err)
		}
		var rejected []*Bid
		if err := cursor.All(sc, &rejected); err != nil {
			return nil, fmt.Errorf("decode sibling bids: %w", err)
		}

		bid.Status = StatusAwarded
		bid.UpdatedAt = now
		return &AwardOutcome{Awarded: &bid, Rejected: rejected}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*AwardOutcome), nil
}
