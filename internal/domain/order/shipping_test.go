package order

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateShipping(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ShippingInfo)
		want   map[string]string
	}{
		{name: "valid", mutate: func(*ShippingInfo) {}},
		{name: "names with spaces", mutate: func(s *ShippingInfo) { s.City = "New Cairo"; s.Country = "United Kingdom" }},
		{
			name:   "short phone number",
			mutate: func(s *ShippingInfo) { s.PhoneNumber = "123" },
			want:   map[string]string{"phoneNumber": PhoneMessage},
		},
		{
			name:   "long phone number",
			mutate: func(s *ShippingInfo) { s.PhoneNumber = "012345678901" },
			want:   map[string]string{"phoneNumber": PhoneMessage},
		},
		{
			name:   "phone number with letters",
			mutate: func(s *ShippingInfo) { s.PhoneNumber = "0123456789a" },
			want:   map[string]string{"phoneNumber": PhoneMessage},
		},
		{
			name:   "digits in first name",
			mutate: func(s *ShippingInfo) { s.FirstName = "M0na" },
			want:   map[string]string{"firstName": "First Name should be letters only"},
		},
		{
			name: "letters rules",
			mutate: func(s *ShippingInfo) {
				s.LastName = "O'Neil"
				s.City = "Cairo-1"
				s.Country = "Egypt!"
			},
			want: map[string]string{
				"lastName": "Last Name should be letters only",
				"city":     "City should be letters only",
				"country":  "Country should be letters only",
			},
		},
		{
			name:   "empty",
			mutate: func(s *ShippingInfo) { *s = ShippingInfo{} },
			want: map[string]string{
				"firstName":      "First Name is required",
				"lastName":       "Last Name is required",
				"buildingNumber": "Building Number is required",
				"streetName":     "Street Name is required",
				"city":           "City is required",
				"country":        "Country is required",
				"phoneNumber":    "Phone Number is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validShipping()
			tt.mutate(&info)

			err := ValidateShipping(info)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Equal(t, tt.want, verr.Fields)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"phoneNumber": "bad",
		"city":        "City is required",
	}}
	require.Equal(t, "invalid shipping info: city: City is required; phoneNumber: bad", err.Error())
}
