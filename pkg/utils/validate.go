package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/printnow/portal/pkg/proto"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterValidation("slug", func(fl validator.FieldLevel) bool { // nolint: errcheck
			return ValidateSlug(fl.Field().String()) == nil
		})
		v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool { // nolint: errcheck
			return ValidateColor(fl.Field().String()) == nil
		})
		validate = v
	})
	return validate
}

// Validate checks v against its `validate` struct tags. It returns a
// *proto.ValidationError listing every invalid field.
func Validate(v interface{}) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &proto.ValidationError{Issues: []proto.Issue{{Message: err.Error()}}}
	}

	issues := make([]proto.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, proto.Issue{
			Path:    fieldPath(fe),
			Message: issueMessage(fe),
		})
	}

	return &proto.ValidationError{Issues: issues}
}

// fieldPath drops the top level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid url"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "slug":
		return "must contain only lowercase letters, numbers and hyphens"
	case "hexcolor6":
		return "must be a #rrggbb color"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
