// Package validation runs struct rules and renders field errors in the
// {message, errors} shape clients expect on 422.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// Errors is an ordered field -> messages map.
type Errors struct {
	fields   []string
	messages map[string][]string
}

// New returns an empty error set.
func New() *Errors {
	return &Errors{messages: map[string][]string{}}
}

// Add appends a message for field.
func (e *Errors) Add(field, message string) {
	if _, ok := e.messages[field]; !ok {
		e.fields = append(e.fields, field)
	}
	e.messages[field] = append(e.messages[field], message)
}

// Has reports whether field already has a message.
func (e *Errors) Has(field string) bool {
	_, ok := e.messages[field]
	return ok
}

// Any reports whether at least one message was added.
func (e *Errors) Any() bool {
	return e != nil && len(e.fields) > 0
}

// Get returns the messages for field.
func (e *Errors) Get(field string) []string {
	return e.messages[field]
}

// Message is the first message followed by a count of the rest.
func (e *Errors) Message() string {
	if !e.Any() {
		return ""
	}
	first := e.messages[e.fields[0]][0]
	rest := -1
	for _, f := range e.fields {
		rest += len(e.messages[f])
	}
	switch rest {
	case 0:
		return first
	case 1:
		return first + " (and 1 more error)"
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}

func (e *Errors) Error() string {
	return e.Message()
}

// MarshalJSON writes fields in the order they were added.
func (e *Errors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.messages[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("filled", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("year_horizon", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(MaxYear())
	})
	return v
}

// MaxYear is the latest accepted start year: ten years past the current one.
func MaxYear() int {
	return time.Now().Year() + 10
}

var indexRe = regexp.MustCompile(`\[(\d+)\]`)

// Struct validates s and returns nil when every rule passes.
func Struct(s interface{}) *Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs := New()
		errs.Add("body", err.Error())
		return errs
	}
	errs := New()
	for _, fe := range fieldErrs {
		field := fieldKey(fe.Namespace())
		errs.Add(field, message(field, fe))
	}
	return errs
}

// fieldKey turns "StoreFundRequest.aliases[0]" into "aliases.0".
func fieldKey(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return indexRe.ReplaceAllString(ns, ".$1")
}

// Attribute is the human form of a field key.
func Attribute(field string) string {
	if strings.Contains(field, ".") {
		return field
	}
	return strings.ReplaceAll(field, "_", " ")
}

func message(field string, fe validator.FieldError) string {
	attr := Attribute(field)
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "filled":
		return fmt.Sprintf("The %s field is required.", attr)
	case "max":
		if isString {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", attr, fe.Param())
	case "min", "gte":
		if isString {
			return fmt.Sprintf("The %s field must be at least %s characters.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", attr, fe.Param())
	case "year_horizon":
		return fmt.Sprintf("The %s field must not be greater than %d.", attr, MaxYear())
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}

// FromDecodeError maps a JSON decoding failure to a field error when the
// failing field is known.
func FromDecodeError(err error) *Errors {
	errs := New()
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		errs.Add(field, fmt.Sprintf("The %s field must be %s.", Attribute(field), kindName(typeErr.Type)))
		return errs
	}
	errs.Add("body", "The request body must be a valid JSON object.")
	return errs
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Bool:
		return "true or false"
	default:
		return "valid"
	}
}

// DistinctFold flags every element of values that repeats another element
// ignoring case. Keys are field.N.
func DistinctFold(errs *Errors, field string, values []string, msg string) {
	fold := cases.Fold()
	counts := make(map[string]int, len(values))
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = fold.String(v)
		counts[keys[i]]++
	}
	for i, k := range keys {
		if counts[k] > 1 {
			errs.Add(fmt.Sprintf("%s.%d", field, i), msg)
		}
	}
}
