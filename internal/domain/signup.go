package domain

import "time"

// SignUpType tags sign-up documents in a container shared with other record kinds.
const SignUpType = "sign_up"

// SignUp is the persisted sign-up event. Key names match the document shape
// other services read from the same container.
type SignUp struct {
	ID            string    `json:"id" dynamodbav:"id" bson:"id"`
	Type          string    `json:"type" dynamodbav:"type" bson:"type"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" dynamodbav:"updatedAt" bson:"updatedAt"`
	UserID        string    `json:"userId" dynamodbav:"userId" bson:"userId"`
	Email         string    `json:"email" dynamodbav:"email" bson:"email"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified" bson:"email_verified"`
	Name          string    `json:"name" dynamodbav:"name" bson:"name"`
	FamilyName    string    `json:"family_name" dynamodbav:"family_name" bson:"family_name"`
	GivenName     string    `json:"given_name" dynamodbav:"given_name" bson:"given_name"`
	PictureURL    string    `json:"picture_url" dynamodbav:"picture_url" bson:"picture_url"`
	UserIP        string    `json:"user_ip" dynamodbav:"user_ip" bson:"user_ip"`
}

// SignUpInput carries the caller-supplied profile attributes. Values are
// stored verbatim.
type SignUpInput struct {
	UserID        string
	Email         string
	EmailVerified bool
	Name          string
	FamilyName    string
	GivenName     string
	PictureURL    string
	UserIP        string
}

// Document is the store's representation of a written record.
// A nil Document means the store answered with an empty body.
type Document map[string]any

// Target identifies the account, database and container a store connects to.
type Target struct {
	Endpoint   string
	Credential Credential
	Database   string
	Container  string
}
