package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"blog-api/models"

	"github.com/go-playground/validator/v10"
)

// FieldError names a rejected field and why it was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError represents custom validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Reason)
	}
	return "validation errors: " + strings.Join(parts, ", ")
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors line up with the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateCreatePost checks a create payload: title, content and author are
// non-empty and the title fits the column.
func ValidateCreatePost(in models.CreatePostInput) error {
	return check(in)
}

// ValidateUpdatePost applies the create rules to whichever fields are present.
func ValidateUpdatePost(in models.UpdatePostInput) error {
	return check(in)
}

func check(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "should not be empty"
	case "max":
		return fmt.Sprintf("must be shorter than or equal to %s characters", fe.Param())
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// FromDecodeError turns a JSON type mismatch on a known field into a
// ValidationError. Other decode failures return nil.
func FromDecodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil
	}

	r := "has an invalid type"
	if typeErr.Type != nil {
		kind := typeErr.Type.Kind()
		if kind == reflect.Ptr {
			kind = typeErr.Type.Elem().Kind()
		}
		switch kind {
		case reflect.String:
			r = "must be a string"
		case reflect.Bool:
			r = "must be a boolean value"
		}
	}
	return &ValidationError{Errors: []FieldError{{Field: typeErr.Field, Reason: r}}}
}
