package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the account email syntax: a local part of letters, digits, '.', '_'
// or '-', an '@', a dotted domain and a TLD of two or more letters.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// MaxSecretBytes is the longest input bcrypt accepts. It is a byte count, not
// a rune count.
const MaxSecretBytes = 72

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	if err := v.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxSecretBytes
	}); err != nil {
		panic(err)
	}
}

// Email reports whether s is an acceptable account email.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, message(fe))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "account_email":
		return "please enter a correct email"
	case "bcrypt_len":
		return fmt.Sprintf("%s must be at most %d bytes", fe.Field(), MaxSecretBytes)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag())
	}
}
