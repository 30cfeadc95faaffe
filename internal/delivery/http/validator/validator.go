// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	postcodeQueryPattern = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)
	placeNamePattern     = regexp.MustCompile(`^[A-Za-z\s\-'.]+$`)
)

// maxPostcodeQueryChars bounds a postcode search term, ignoring spaces.
const maxPostcodeQueryChars = 7

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New returns a validator with the location search tags registered:
// "postcode_query" for partial postcodes and "place_name" for towns and counties.
func New() *CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails on an empty tag or nil func.
	_ = validate.RegisterValidation("postcode_query", isPostcodeQuery)
	_ = validate.RegisterValidation("place_name", isPlaceName)

	return &CustomValidator{validate: validate}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validate.Struct(i)
}

func isPostcodeQuery(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !postcodeQueryPattern.MatchString(value) {
		return false
	}

	return len(strings.Join(strings.Fields(value), "")) <= maxPostcodeQueryChars
}

func isPlaceName(fl validator.FieldLevel) bool {
	return placeNamePattern.MatchString(fl.Field().String())
}
