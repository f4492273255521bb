package flatten

import (
	"encoding/json"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParsePrice Tests
// ----------------------------------------------------------------------------

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string // raw JSON
		wantOK  bool
		wantVal float64
	}{
		// Valid: JSON numbers
		{
			name:    "plain number",
			input:   `19.99`,
			wantOK:  true,
			wantVal: 19.99,
		},
		{
			name:    "integer number",
			input:   `42`,
			wantOK:  true,
			wantVal: 42,
		},
		{
			name:    "zero",
			input:   `0`,
			wantOK:  true,
			wantVal: 0,
		},

		// Valid: currency strings
		{
			name:    "dollar sign",
			input:   `"$10.00"`,
			wantOK:  true,
			wantVal: 10,
		},
		{
			name:    "dollar with thousands separator",
			input:   `"$1,234.56"`,
			wantOK:  true,
			wantVal: 1234.56,
		},
		{
			name:    "euro sign",
			input:   `"€99.50"`,
			wantOK:  true,
			wantVal: 99.5,
		},
		{
			name:    "pound sign",
			input:   `"£7.25"`,
			wantOK:  true,
			wantVal: 7.25,
		},
		{
			name:    "surrounding whitespace",
			input:   `"  12.50  "`,
			wantOK:  true,
			wantVal: 12.5,
		},
		{
			name:    "millions with separators",
			input:   `"1,000,000"`,
			wantOK:  true,
			wantVal: 1000000,
		},

		// Valid: accounting format (sign check is the caller's concern)
		{
			name:    "accounting negative parentheses",
			input:   `"(123.45)"`,
			wantOK:  true,
			wantVal: -123.45,
		},
		{
			name:    "negative number",
			input:   `-5.5`,
			wantOK:  true,
			wantVal: -5.5,
		},

		// Invalid
		{
			name:   "not a number",
			input:  `"N/A"`,
			wantOK: false,
		},
		{
			name:   "free text",
			input:  `"bad"`,
			wantOK: false,
		},
		{
			name:   "empty string",
			input:  `""`,
			wantOK: false,
		},
		{
			name:   "currency symbol only",
			input:  `"$"`,
			wantOK: false,
		},
		{
			name:   "null",
			input:  `null`,
			wantOK: false,
		},
		{
			name:   "absent field",
			input:  ``,
			wantOK: false,
		},
		{
			name:   "object value",
			input:  `{"amount": 5}`,
			wantOK: false,
		},
		{
			name:   "trailing garbage",
			input:  `"12.50 USD each"`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(json.RawMessage(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("ParsePrice(%s) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.wantVal {
				t.Errorf("ParsePrice(%s) = %v, want %v", tt.input, got, tt.wantVal)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseQuantity Tests
// ----------------------------------------------------------------------------

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string // raw JSON
		wantOK  bool
		wantVal int64
	}{
		{
			name:    "integer number",
			input:   `3`,
			wantOK:  true,
			wantVal: 3,
		},
		{
			name:    "integral float",
			input:   `3.0`,
			wantOK:  true,
			wantVal: 3,
		},
		{
			name:    "numeric string",
			input:   `"7"`,
			wantOK:  true,
			wantVal: 7,
		},
		{
			name:    "numeric string with whitespace",
			input:   `" 12 "`,
			wantOK:  true,
			wantVal: 12,
		},
		{
			name:    "integral float string",
			input:   `"4.0"`,
			wantOK:  true,
			wantVal: 4,
		},
		{
			name:    "thousands separator string",
			input:   `"1,000"`,
			wantOK:  true,
			wantVal: 1000,
		},
		{
			name:    "zero",
			input:   `0`,
			wantOK:  true,
			wantVal: 0,
		},
		{
			name:    "negative passes parsing, caller rejects",
			input:   `-2`,
			wantOK:  true,
			wantVal: -2,
		},

		// Invalid
		{
			name:   "fractional quantity",
			input:  `2.5`,
			wantOK: false,
		},
		{
			name:   "fractional string",
			input:  `"2.5"`,
			wantOK: false,
		},
		{
			name:   "word",
			input:  `"two"`,
			wantOK: false,
		},
		{
			name:   "empty string",
			input:  `""`,
			wantOK: false,
		},
		{
			name:   "null",
			input:  `null`,
			wantOK: false,
		},
		{
			name:   "absent field",
			input:  ``,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(json.RawMessage(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("ParseQuantity(%s) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.wantVal {
				t.Errorf("ParseQuantity(%s) = %d, want %d", tt.input, got, tt.wantVal)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantDate  string // YYYY-MM-DD when valid
	}{
		{
			name:      "ISO date",
			input:     "2023-01-15",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "ISO datetime",
			input:     "2023-01-15 10:30:00",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "RFC3339",
			input:     "2023-01-15T10:30:00Z",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "RFC3339 with zone offset",
			input:     "2023-01-15T10:30:00+05:00",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "US slash format",
			input:     "1/15/2023",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "dotted format",
			input:     "15.01.2023",
			wantValid: false, // day-first dotted layouts are not in the table
		},
		{
			name:      "month name format",
			input:     "Jan 15, 2023",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "compact format",
			input:     "20230115",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "two digit year",
			input:     "1/15/23",
			wantValid: true,
			wantDate:  "2023-01-15",
		},
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "whitespace only",
			input:     "   ",
			wantValid: false,
		},
		{
			name:      "not a date",
			input:     "not a date",
			wantValid: false,
		},
		{
			name:      "number only",
			input:     "42",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ParseDate(%q) valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			want, err := time.Parse("2006-01-02", tt.wantDate)
			if err != nil {
				t.Fatalf("bad test fixture date %q: %v", tt.wantDate, err)
			}
			if !got.Time.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got.Time, want)
			}
		})
	}
}

func TestParseDateTwoDigitYearPivot(t *testing.T) {
	// A 2-digit year far in the future should roll back a century.
	farFuture := time.Now().Year() + TwoDigitYearPivot + 5
	input := "1/2/" + itoa2(farFuture%100)

	got := ParseDate(input)
	if !got.Valid {
		t.Fatalf("ParseDate(%q) invalid, want valid", input)
	}
	if got.Time.Year() >= farFuture {
		t.Errorf("ParseDate(%q) year = %d, expected previous century", input, got.Time.Year())
	}
}

func itoa2(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
