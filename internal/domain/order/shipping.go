package order

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FirstName      string `json:"firstName" validate:"required,letters"`
	LastName       string `json:"lastName" validate:"required,letters"`
	BuildingNumber string `json:"buildingNumber" validate:"required"`
	StreetName     string `json:"streetName" validate:"required"`
	City           string `json:"city" validate:"required,letters"`
	Country        string `json:"country" validate:"required,letters"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,len=11,number"`
}

type fieldSpec struct {
	name  string
	label string
	ptr   func(*ShippingInfo) *string
}

var shippingFields = []fieldSpec{
	{"firstName", "First Name", func(s *ShippingInfo) *string { return &s.FirstName }},
	{"lastName", "Last Name", func(s *ShippingInfo) *string { return &s.LastName }},
	{"buildingNumber", "Building Number", func(s *ShippingInfo) *string { return &s.BuildingNumber }},
	{"streetName", "Street Name", func(s *ShippingInfo) *string { return &s.StreetName }},
	{"city", "City", func(s *ShippingInfo) *string { return &s.City }},
	{"country", "Country", func(s *ShippingInfo) *string { return &s.Country }},
	{"phoneNumber", "Phone Number", func(s *ShippingInfo) *string { return &s.PhoneNumber }},
}

func shippingField(name string) (fieldSpec, bool) {
	for _, f := range shippingFields {
		if f.name == name {
			return f, true
		}
	}
	return fieldSpec{}, false
}

// PhoneMessage is reported for a phone number that is not exactly 11 digits.
const PhoneMessage = "The phone number should be 11 numbers, not more or less, and cannot contain letters."

var lettersOnly = regexp.MustCompile(`^[A-Za-z\s]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func shippingValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("letters", func(fl validator.FieldLevel) bool {
			return lettersOnly.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// ValidationError lists per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("invalid shipping info: ")
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", name, e.Fields[name])
	}
	return b.String()
}

// ValidateShipping checks s against the checkout form rules. It returns a
// *ValidationError describing every failing field, or nil.
func ValidateShipping(s ShippingInfo) error {
	err := shippingValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate shipping info")
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = fieldMessage(fe.Field(), fe.Tag())
	}
	return out
}

func fieldMessage(field, tag string) string {
	f, ok := shippingField(field)
	label := field
	if ok {
		label = f.label
	}
	switch {
	case tag == "required":
		return label + " is required"
	case field == "phoneNumber":
		return PhoneMessage
	case tag == "letters":
		return label + " should be letters only"
	default:
		return label + " is invalid"
	}
}
