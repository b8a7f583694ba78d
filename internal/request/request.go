// Package request decodes and validates JSON request bodies and path ids.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Defaulter is implemented by inputs that fill in default values for
// fields the client left empty.
type Defaulter interface {
	SetDefaults()
}

// Decode reads a JSON body into dst and runs struct validation on it.
// Fields absent from the body keep their current value in dst, so decoding
// onto a populated struct applies a partial update.
// The returned error is safe to show to API clients.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if d, ok := dst.(Defaulter); ok {
		d.SetDefaults()
	}
	return Validate(dst)
}

// Validate runs struct validation and flattens failures into one message.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return field + " must be a valid URL"
	case "uuid":
		return field + " must be a valid UUID"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}

// ID parses the {id} path parameter as a UUID.
func ID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// QueryID parses an optional UUID query parameter. ok is false when the parameter is absent.
func QueryID(r *http.Request, key string) (id uuid.UUID, ok bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err = uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%s must be a valid UUID", key)
	}
	return id, true, nil
}
