package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LanguageEN = "en"
	LanguageFR = "fr"

	StatusActive = "Active"
)

// User is a single account document. The verification token and the soft-delete
// bookkeeping never leave the service as JSON.
type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Nickname string `bson:"nickname" json:"nickname"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`

	PreferredLanguage string   `bson:"preferred_language" json:"preferredLanguage"`
	Roles             []string `bson:"roles,omitempty" json:"roles,omitempty"`
	Status            string   `bson:"status" json:"status"`

	Verified                 bool       `bson:"verified" json:"verified"`
	VerificationToken        string     `bson:"verification_token,omitempty" json:"-"`
	VerificationTokenExpires *time.Time `bson:"verification_token_expires,omitempty" json:"-"`

	Deleted   bool       `bson:"deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
