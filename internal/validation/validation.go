// Package validation holds the shared struct validator and the custom tags the community
// forms rely on.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages line up with form fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("flatnumber", validateFlatNumber)
	_ = v.RegisterValidation("block", validateBlock)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("imageurl", validateImageURL)
	return v
}

func validateImageURL(fl validator.FieldLevel) bool {
	return ImageURL(fl.Field().String())
}

// ImageURL reports whether s is a hosted https image address. Local references such as
// blob: or file: URLs only exist on the device that picked the photo.
func ImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != "" && u.User == nil
}

func validateFlatNumber(fl validator.FieldLevel) bool {
	return acl.ValidFlatNumber(fl.Field().String())
}

func validateBlock(fl validator.FieldLevel) bool {
	return acl.ValidBlock(fl.Field().String())
}

// validatePhone accepts 10 to 15 digits with optional leading +, spaces and dashes.
func validatePhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	return len(PhoneDigits(s)) >= 10 && len(PhoneDigits(s)) <= 15 && phoneChars(s)
}

func phoneChars(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsDigit(r), r == ' ', r == '-':
		case r == '+' && i == 0:
		default:
			return false
		}
	}
	return true
}

// PhoneDigits strips everything but digits.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Struct validates v and converts failures into an apperr.ValidationError keyed by json name.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Invalid("body", err.Error())
	}

	var c apperr.Collector
	for _, fe := range verrs {
		c.Add(fieldPath(fe), message(fe))
	}
	return c.Err()
}

// fieldPath drops the top-level struct name: "ProductInput.price" becomes "price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "flatnumber":
		return "must be 3 or 4 digits"
	case "block":
		return "must be one of " + strings.Join(acl.Blocks, ", ")
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "imageurl":
		return "must be an uploaded https image URL"
	default:
		return "is invalid"
	}
}
