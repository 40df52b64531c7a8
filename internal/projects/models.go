package projects

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses
const (
	StatusOpen    = "open"
	StatusActive  = "active"
	StatusPaused  = "paused"
	StatusClosed  = "closed"
	StatusAwarded = "awarded"
)

// Project is a tender listing open for bids
type Project struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"`
	Budget         float64            `bson:"budget" json:"budget"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Duration       string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Deadline       time.Time          `bson:"deadline" json:"deadline"`
	Specifications string             `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Requirements   []string           `bson:"requirements,omitempty" json:"requirements,omitempty"`
	Status         string             `bson:"status" json:"status"`
	BidCount       int                `bson:"bidCount" json:"bidCount"`

	CreatedBy     string `bson:"createdBy" json:"createdBy"`
	TenderCompany string `bson:"tenderCompany,omitempty" json:"tenderCompany,omitempty"`

	AwardedTo      string     `bson:"awardedTo,omitempty" json:"awardedTo,omitempty"`
	AwardedCompany string     `bson:"awardedCompany,omitempty" json:"awardedCompany,omitempty"`
	AwardedAmount  float64    `bson:"awardedAmount,omitempty" json:"awardedAmount,omitempty"`
	AwardedAt      *time.Time `bson:"awardedAt,omitempty" json:"awardedAt,omitempty"`

	ClosedAt      *time.Time `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
	ClosureReason string     `bson:"closureReason,omitempty" json:"closureReason,omitempty"`
	PausedAt      *time.Time `bson:"pausedAt,omitempty" json:"pausedAt,omitempty"`
	PauseReason   string     `bson:"pauseReason,omitempty" json:"pauseReason,omitempty"`
	ResumedAt     *time.Time `bson:"resumedAt,omitempty" json:"resumedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateRequest is the payload for creating a project
type CreateRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Budget         float64  `json:"budget" binding:"required,gt=0"`
	Location       string   `json:"location"`
	Duration       string   `json:"duration"`
	Deadline       string   `json:"deadline" binding:"required"`
	Specifications string   `json:"specifications"`
	Requirements   []string `json:"requirements"`
}

// UpdateRequest carries the editable project fields. Pointers make a
// missing field distinguishable from a zero value.
type UpdateRequest struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
	Budget         *float64  `json:"budget"`
	Location       *string   `json:"location"`
	Duration       *string   `json:"duration"`
	Deadline       *string   `json:"deadline"`
	Specifications *string   `json:"specifications"`
	Requirements   *[]string `json:"requirements"`
}

// StatusRequest changes the project lifecycle state
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open active paused closed"`
	Reason string `json:"reason"`
}

// ListFilter narrows the open-project browse query
type ListFilter struct {
	Status    string
	Category  string
	MaxBudget float64
	Limit     int64
}
