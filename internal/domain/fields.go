package domain

// Stored attribute names for partial account updates. They match the
// dynamodbav and bson tags on Account.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldPasswordHash  = "password_hash"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldGender        = "gender"
	FieldHobbies       = "hobbies"
	FieldEmailVerified = "email_verified"
	FieldPhoneVerified = "phone_verified"
	FieldUpdatedAt     = "updated_at"
)
