package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types
const (
	UserTypeTender = "tender"
	UserTypeBidder = "bidder"
	UserTypeAdmin  = "admin"
)

// User is a registered company account. Verification fields on the same
// document are owned by the verification package.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"`
	CompanyName     string             `bson:"companyName" json:"companyName"`
	UserType        string             `bson:"userType" json:"userType"`
	ContactNumber   string             `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Industry        string             `bson:"industry,omitempty" json:"industry,omitempty"`
	CompanySize     string             `bson:"companySize,omitempty" json:"companySize,omitempty"`
	EmailVerified   bool               `bson:"emailVerified" json:"emailVerified"`
	EmailVerifyToken string            `bson:"verificationToken,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Identity is the verified request context the rest of the system trusts.
type Identity struct {
	UserID      string
	UserType    string
	Email       string
	CompanyName string
}

// Requests

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	CompanyName string `json:"companyName" binding:"required"`
	UserType    string `json:"userType" binding:"required,oneof=tender bidder"`
	Industry    string `json:"industry"`
	CompanySize string `json:"companySize"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
