package validator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

// dateLayouts are the accepted wire formats for calendar dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// nowFunc is the clock used by the date rules. Tests replace it.
var nowFunc = time.Now

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so clients can map errors back to inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := dateValue(fl.Field())
		return ok
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		d, ok := dateValue(fl.Field())
		if !ok {
			return false
		}
		return !d.After(today())
	})
	_ = v.RegisterValidation("minage", func(fl validator.FieldLevel) bool {
		d, ok := dateValue(fl.Field())
		if !ok {
			return false
		}
		var years int
		if _, err := fmt.Sscanf(fl.Param(), "%d", &years); err != nil {
			return false
		}
		return !d.After(today().AddDate(-years, 0, 0))
	})

	return v
}

// ParseDate parses a calendar date in one of the accepted layouts and
// truncates it to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func dateValue(v reflect.Value) (time.Time, bool) {
	switch val := v.Interface().(type) {
	case string:
		d, err := ParseDate(val)
		return d, err == nil
	case time.Time:
		y, m, d := val.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), !val.IsZero()
	default:
		return time.Time{}, false
	}
}

func today() time.Time {
	y, m, d := nowFunc().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
// Extra holds field errors raised outside of struct tags.
type ValidationError struct {
	Errors validator.ValidationErrors
	Extra  map[string]string
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Extra: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	fields := e.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", name, fields[name]))
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets callers match validation failures with errors.Is.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors)+len(e.Extra))
	for _, err := range e.Errors {
		fields[err.Field()] = msgForTag(err)
	}
	for k, v := range e.Extra {
		fields[k] = v
	}
	return fields
}

func msgForTag(fe validator.FieldError) string {
	numeric := isNumeric(fe.Kind())
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if numeric {
			return fmt.Sprintf("must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "notfuture":
		return "must not be in the future"
	case "minage":
		return fmt.Sprintf("must be at least %s years ago", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// DecodeAndValidate reads JSON from the request body, decodes it into dst,
// and validates it.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return Validate(dst)
}
