package domain

import "time"

// OTPRecord is the pending phone verification code for an account.
// PK: account_id. At most one record exists per account; a reissue overwrites it.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL and Redis key expiry. It
// lies after the redeemable window so expiry is always decided from UpdatedAt.
type OTPRecord struct {
	AccountID string    `json:"account_id" dynamodbav:"account_id"`
	CodeHash  string    `json:"code_hash" dynamodbav:"code_hash"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
}
