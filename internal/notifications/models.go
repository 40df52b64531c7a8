package notifications

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	TypeShortlist     = "shortlist"
	TypeAward         = "award"
	TypeReject        = "reject"
	TypeProjectUpdate = "project_update"
	TypeNewBid        = "new_bid"
)

// Notification is one in-app message for a company user
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      string             `bson:"type" json:"type"`
	ProjectID string             `bson:"projectId,omitempty" json:"projectId,omitempty"`
	BidID     string             `bson:"bidId,omitempty" json:"bidId,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
