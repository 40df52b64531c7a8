package bids

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tenderdesk/tender-portal-backend/internal/scoring"
)

// Bid statuses
const (
	StatusSubmitted   = "submitted"
	StatusShortlisted = "shortlisted"
	StatusAwarded     = "awarded"
	StatusRejected    = "rejected"
)

// Owner actions on a bid
const (
	ActionShortlist = "shortlist"
	ActionAward     = "award"
	ActionReject    = "reject"
)

// Timeline is the bidder's proposed delivery schedule
type Timeline struct {
	Weeks       int    `bson:"weeks" json:"weeks"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// Experience summarizes the bidder's track record
type Experience struct {
	Years           int `bson:"years" json:"years"`
	SimilarProjects int `bson:"similarProjects,omitempty" json:"similarProjects,omitempty"`
	TeamSize        int `bson:"teamSize,omitempty" json:"teamSize,omitempty"`
}

// Bid is one bidder's offer on a project
type Bid struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID      primitive.ObjectID `bson:"projectId" json:"projectId"`
	BidderID       string             `bson:"bidderId" json:"bidderId"`
	BidderCompany  string             `bson:"bidderCompany" json:"bidderCompany"`
	Amount         float64            `bson:"bidAmount" json:"bidAmount"`
	Proposal       string             `bson:"proposal" json:"proposal"`
	Timeline       Timeline           `bson:"timeline" json:"timeline"`
	Experience     Experience         `bson:"experience" json:"experience"`
	Qualifications []string           `bson:"qualifications,omitempty" json:"qualifications,omitempty"`
	References     []string           `bson:"references,omitempty" json:"references,omitempty"`

	Status          string `bson:"status" json:"status"`
	RejectionReason string `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`

	AIScore    int               `bson:"aiScore" json:"aiScore"`
	Rank       int               `bson:"rank,omitempty" json:"rank,omitempty"`
	Percentile int               `bson:"percentile,omitempty" json:"percentile,omitempty"`
	Analysis   *scoring.Analysis `bson:"analysis,omitempty" json:"analysis,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SubmitRequest is the payload for submitting a bid
type SubmitRequest struct {
	ProjectID      string     `json:"projectId" binding:"required"`
	CompanyName    string     `json:"companyName"`
	Amount         float64    `json:"bidAmount" binding:"required,gt=0"`
	Proposal       string     `json:"proposal" binding:"required"`
	Timeline       Timeline   `json:"timeline"`
	Experience     Experience `json:"experience"`
	Qualifications []string   `json:"qualifications"`
	References     []string   `json:"references"`
}

// ProposalUpdateRequest revises a submitted bid
type ProposalUpdateRequest struct {
	Amount   *float64  `json:"bidAmount"`
	Proposal *string   `json:"proposal"`
	Timeline *Timeline `json:"timeline"`
}

// ActionRequest is an owner decision on a bid
type ActionRequest struct {
	BidID     string `json:"bidId" binding:"required"`
	ProjectID string `json:"projectId" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=shortlist award reject"`
	Reason    string `json:"reason"`
}

// RankedBid is a bid decorated with its competitive standing
type RankedBid struct {
	*Bid
	CompetitiveAdvantage string `json:"competitiveAdvantage"`
}
