package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns a json field name (rejection_reason, rejectionReason)
// into "Rejection Reason".
func formatFieldName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	caser := cases.Title(language.English)
	return caser.String(b.String())
}

// MapValidationError converts binding failures into a single INVALID_INPUT
// error listing every failed field.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			field := formatFieldName(e.Field())
			switch e.Tag() {
			case "required":
				msgs = append(msgs, RequiredField(field).Message)
			case "oneof":
				msgs = append(msgs, field+" must be one of: "+strings.ReplaceAll(e.Param(), " ", ", "))
			default:
				msgs = append(msgs, InvalidField(field).Message)
			}
		}
		return Validation("Invalid input", msgs)
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
