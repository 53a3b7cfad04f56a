package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "out/map.svg", false},
		{"valid absolute", "/tmp/visits.db", false},
		{"valid with dots", "../values.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateWhereClause(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"band filter", "band = 'r'", false},
		{"range", "observationStartMJD > 60218.5 and fieldDec < -10", false},
		{"in list", "band in ('g', 'r')", false},

		{"statement separator", "band = 'r'; drop table observations", true},
		{"line comment", "band = 'r' -- x", true},
		{"block comment", "band = /* x */ 'r'", true},
		{"quote escape", "band = \"r\"", true},
		{"too long", strings.Repeat("a", 2000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWhereClause(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWhereClause(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
