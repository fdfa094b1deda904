package common

import (
	"testing"
)

func TestValidateDelimiter(t *testing.T) {
	tests := []struct {
		input string
		want  byte
		valid bool
	}{
		{",", ',', true},
		{";", ';', true},
		{"|", '|', true},
		{"", 0, false},
		{",,", 0, false},
		{`"`, 0, false},
		{"'", 0, false},
		{" ", 0, false},
		{"\t", 0, false},
		{"\xa7", 0, false},
		{"§", 0, false},
		{"\x7f", 0x7f, true},
	}

	for _, tt := range tests {
		got, err := ValidateDelimiter(tt.input)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateDelimiter(%q) error = %v, want valid %v", tt.input, err, tt.valid)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	if err := ValidateEnum("format", "ndjson", []string{"ndjson", "text"}); err != nil {
		t.Errorf("Expected ndjson to be allowed, got %v", err)
	}

	err := ValidateEnum("format", "xml", []string{"ndjson", "text"})
	if err == nil {
		t.Fatal("Expected xml to be rejected")
	}
	if err.Message != "format must be one of: ndjson, text" {
		t.Errorf("Unexpected message %q", err.Message)
	}
}

func TestValidateRequired(t *testing.T) {
	if err := ValidateRequired("file_url", "   "); err == nil {
		t.Error("Blank value should be rejected")
	}
	if err := ValidateRequired("file_url", "http://example.com/a.csv"); err != nil {
		t.Errorf("Unexpected error %v", err)
	}
}

func TestValidationError(t *testing.T) {
	result := &RecordValidationResult{
		RowNumber: 3,
		Valid:     true,
	}

	// Initially valid, no errors
	if !result.Valid || len(result.Errors) != 0 {
		t.Error("New result should be valid with no errors")
	}

	result.AddError("line", "malformed line")

	if result.Valid {
		t.Error("Result should be invalid after adding error")
	}

	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %d", len(result.Errors))
	}

	if result.Errors[0].Field != "line" {
		t.Errorf("Expected field 'line', got %q", result.Errors[0].Field)
	}

	json := result.ToJSON()
	if json != `[{"field":"line","message":"malformed line"}]` {
		t.Errorf("Unexpected JSON %s", json)
	}
}
