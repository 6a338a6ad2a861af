package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	LogFormat      string // "text" | "json"
	PublicBaseURL  string // used to build verification links
	AllowedOrigins []string // CORS allowed origins

	StoreDriver    string // "dynamo" | "mongo" | "memory"
	OTPStoreDriver string // "dynamo" | "redis" | "memory"

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret   string
	EmailSecret     string
	SessionTokenTTL time.Duration
	EmailTokenTTL   time.Duration
	OTPTTL          time.Duration
	BcryptCost      int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SMSProvider          string // "sns" | "twilio" | "log"
	SNSRegion            string
	SNSSenderID          string
	SNSOriginationNumber string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioFrom           string

	DispatchTimeout      time.Duration
	AutoVerifyOnRegister bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts      string
	AccountEmails string
	OTPs          string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	storeDriver := getEnv("STORE_DRIVER", "dynamo")
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		StoreDriver:    storeDriver,
		OTPStoreDriver: getEnv("OTP_STORE_DRIVER", defaultOTPDriver(storeDriver)),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:      getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			AccountEmails: getEnv("DYNAMO_TABLE_ACCOUNT_EMAILS", "account_emails"),
			OTPs:          getEnv("DYNAMO_TABLE_OTPS", "otps"),
		},

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "accounts"),
		MongoCollection: getEnv("MONGO_COLLECTION", "users"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionSecret:   getEnv("JWT_SECRET", ""),
		EmailSecret:     getEnv("JWT_OTP_SECRET", ""),
		SessionTokenTTL: getEnvDuration("SESSION_TOKEN_TTL", 7*24*time.Hour),
		EmailTokenTTL:   getEnvDuration("EMAIL_TOKEN_TTL", 5*time.Minute),
		OTPTTL:          getEnvDuration("OTP_TTL", 5*time.Minute),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SMSProvider:          getEnv("SMS_PROVIDER", "sns"),
		SNSRegion:            getEnv("SNS_REGION", "us-east-1"),
		SNSSenderID:          getEnv("SNS_SENDER_ID", ""),
		SNSOriginationNumber: getEnv("SNS_ORIGINATION_NUMBER", ""),
		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:           getEnv("TWILIO_FROM", ""),

		DispatchTimeout:      getEnvDuration("DISPATCH_TIMEOUT", 10*time.Second),
		AutoVerifyOnRegister: getEnvBool("AUTO_VERIFY_ON_REGISTER", true),
	}
}

// Validate reports configuration that would make the service unsafe to start.
func (c *Config) Validate() error {
	if c.SessionSecret == "" || c.EmailSecret == "" {
		return errors.New("JWT_SECRET and JWT_OTP_SECRET are required")
	}
	if c.SessionSecret == c.EmailSecret {
		return errors.New("JWT_SECRET and JWT_OTP_SECRET must differ")
	}
	if c.SessionTokenTTL <= 0 || c.EmailTokenTTL <= 0 || c.OTPTTL <= 0 {
		return errors.New("token and otp TTLs must be positive")
	}
	return nil
}

// defaultOTPDriver keeps OTP records next to accounts unless the account store
// cannot hold them.
func defaultOTPDriver(storeDriver string) string {
	if storeDriver == "mongo" {
		return "redis"
	}
	return storeDriver
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
