package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrors converts a gin binding error into the field→messages map of
// the validation-failure response contract.
func bindingErrors(err error) map[string][]string {
	out := map[string][]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			out[field] = append(out[field], validationMessage(fe))
		}
		return out
	}

	out["body"] = []string{"Invalid request body"}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Must be a valid email address."
	case "max":
		return "Must not exceed " + fe.Param() + " characters."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}
