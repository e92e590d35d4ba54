package weather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// queryInput mirrors the request fields after normalization.
type queryInput struct {
	City   string `validate:"required"`
	Format string `validate:"oneof=json xml"`
}

// NewQuery validates raw request values and builds a Query.
// The output format is case-insensitive.
func NewQuery(city, outputFormat string) (Query, error) {
	in := queryInput{
		City:   city,
		Format: strings.ToLower(outputFormat),
	}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return Query{}, err
		}
		return Query{}, toValidationError(fieldErrs[0], in)
	}

	return Query{
		City:   in.City,
		Format: OutputFormat(in.Format),
	}, nil
}

func toValidationError(fe validator.FieldError, in queryInput) *ValidationError {
	switch fe.Field() {
	case "City":
		return &ValidationError{Field: "city", Message: "The city string is empty"}
	default:
		return &ValidationError{
			Field: "output_format",
			Message: fmt.Sprintf("Invalid output format: '%s'. Only allowed formats are {%s, %s}",
				in.Format, FormatJSON, FormatXML),
		}
	}
}
