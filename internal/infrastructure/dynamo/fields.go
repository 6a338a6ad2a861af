package dynamo

// DynamoDB attribute names used in keys and condition expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldAccountID = "account_id"
	fieldEmail     = "email"
	fieldName      = "name"
	fieldCodeHash  = "code_hash"
	fieldUpdatedAt = "updated_at"
	fieldExpiresAt = "expires_at"
)
