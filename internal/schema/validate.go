// Package schema defines the JSON bodies exchanged between clients and the
// API. Validation rules live in `binding` tags so gin enforces them on the
// server and the workflow engine can check the same rules before submitting.
package schema

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	Configure(v)
	return v
}

// Configure makes validation errors report JSON field names and registers
// the cents and maxbytes rules used by the request bodies.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cents", validCents)
	_ = v.RegisterValidation("maxbytes", validMaxBytes)
}

// validCents accepts numbers with at most two decimal places.
func validCents(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	d := decimal.NewFromFloat(fl.Field().Float())
	return d.Equal(d.Round(2))
}

// validMaxBytes limits the encoded length of a string; bcrypt only reads
// the first 72 bytes of a password.
func validMaxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// ErrMalformed is returned for bodies that are not valid JSON for the target type.
var ErrMalformed = errors.New("Invalid request")

// ValidationError lists the fields that failed their binding rules.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "Missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return "Invalid fields: " + strings.Join(e.Invalid, ", ")
}

// Validate checks v against its binding tags.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return Describe(err)
	}
	return nil
}

// Describe turns a binding error into a ValidationError, or ErrMalformed when
// the error did not come from the validator.
func Describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrMalformed
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			out.Missing = append(out.Missing, fe.Field())
		} else {
			out.Invalid = append(out.Invalid, fe.Field())
		}
	}
	return out
}
