// Package validation checks user-supplied payloads before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest accepted signup password.
const MinPasswordLength = 8

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		ok, _ := ValidateURL(fl.Field().String())
		return ok
	})
	return v
}

// Struct validates s against its `validate` tags and returns the first
// failure as a user-facing message.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required.", fe.Field())
	case "email":
		return fmt.Errorf("%s must be a valid email address.", fe.Field())
	case "weburl":
		return fmt.Errorf("%s must use http:// or https://.", fe.Field())
	case "max":
		return fmt.Errorf("%s must be at most %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid.", fe.Field())
	}
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateEmail checks a signup address.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "Email is required."
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false, "Email is invalid."
	}
	return true, ""
}

// ValidatePassword checks a signup password.
func ValidatePassword(password string) (bool, string) {
	if password == "" {
		return false, "Password is required."
	}
	if len(password) < MinPasswordLength {
		return false, fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)
	}
	return true, ""
}
