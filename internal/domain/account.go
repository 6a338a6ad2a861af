package domain

import "time"

// Gender vocabulary.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOthers = "Others"
)

// Hobby vocabulary.
const (
	HobbyReading    = "Reading"
	HobbyTravelling = "Travelling"
	HobbyCoding     = "Coding"
)

type Account struct {
	AccountID     string    `json:"_id" dynamodbav:"account_id" bson:"_id"`
	Name          string    `json:"name" dynamodbav:"name" bson:"name"`
	Email         string    `json:"email" dynamodbav:"email" bson:"email"`
	PasswordHash  string    `json:"-" dynamodbav:"password_hash" bson:"password_hash"`
	Phone         string    `json:"phone" dynamodbav:"phone" bson:"phone"`
	Address       string    `json:"address" dynamodbav:"address" bson:"address"`
	Gender        string    `json:"gender" dynamodbav:"gender" bson:"gender"`
	Hobbies       []string  `json:"hobbies" dynamodbav:"hobbies" bson:"hobbies"`
	EmailVerified bool      `json:"isMailVerified" dynamodbav:"email_verified" bson:"email_verified"`
	PhoneVerified bool      `json:"isPhoneVerified" dynamodbav:"phone_verified" bson:"phone_verified"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" dynamodbav:"updated_at" bson:"updated_at"`
}

// FullyVerified reports whether both verification channels are complete.
func (a *Account) FullyVerified() bool {
	return a.EmailVerified && a.PhoneVerified
}

// AccountName is the projection returned by the account listing.
type AccountName struct {
	AccountID string `json:"_id" dynamodbav:"account_id" bson:"_id"`
	Name      string `json:"name" dynamodbav:"name" bson:"name"`
}

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,account_email"`
	Password string   `json:"password" validate:"required,bcrypt_len"`
	Phone    string   `json:"phone" validate:"required"`
	Address  string   `json:"address" validate:"required"`
	Gender   string   `json:"gender" validate:"required,oneof=Male Female Others"`
	Hobbies  []string `json:"hobbies" validate:"required,min=1,dive,oneof=Reading Travelling Coding"`
}

// UpdateAccountRequest carries a partial update; nil fields are left untouched.
type UpdateAccountRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1"`
	Email    *string  `json:"email" validate:"omitempty,account_email"`
	Password *string  `json:"password" validate:"omitempty,min=1,bcrypt_len"`
	Phone    *string  `json:"phone" validate:"omitempty,min=1"`
	Address  *string  `json:"address" validate:"omitempty,min=1"`
	Gender   *string  `json:"gender" validate:"omitempty,oneof=Male Female Others"`
	Hobbies  []string `json:"hobbies" validate:"omitempty,dive,oneof=Reading Travelling Coding"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
