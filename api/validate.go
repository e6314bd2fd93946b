package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/portfolio-cms/errs"
)

// validate is shared by every handler; validator caches struct metadata per instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// IsUUIDv4 is the single identifier check used by every handler.
func IsUUIDv4(s string) bool {
	return validate.Var(strings.ToLower(s), "required,uuid4") == nil
}

// validateStruct returns the first failing field as an ApiErr.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.NewMalformedPayloadError("form", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errs.NewMissingRequiredFieldError(fe.Field())
	case "url", "http_url":
		return errs.NewInvalidFieldError(fe.Field(), "must be a valid URL")
	default:
		return errs.NewInvalidFieldError(fe.Field(), fmt.Sprintf("failed %q validation", fe.Tag()))
	}
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errs.NewInvalidFieldError(field, "must be a date in YYYY-MM-DD format")
}
