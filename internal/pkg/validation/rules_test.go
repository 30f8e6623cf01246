package validation

import "testing"

func TestRollNumberValidator(t *testing.T) {
	v, err := NewRollNumberValidator("")
	if err != nil {
		t.Fatalf("NewRollNumberValidator failed: %v", err)
	}

	tests := []struct {
		roll string
		want bool
	}{
		{"21CSE045", true},
		{" 21cse045 ", true},
		{"21CS1", false},
		{"CSE045", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := v.Valid(tt.roll); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.roll, got, tt.want)
		}
	}

	if _, err := NewRollNumberValidator("("); err == nil {
		t.Errorf("Expected error for invalid pattern")
	}
}

func TestStringValidation(t *testing.T) {
	if !NewStringValidation("Asha").WithMinLength(NameMinLength).Validate() {
		t.Errorf("Expected valid name")
	}
	if NewStringValidation(" ").Validate() {
		t.Errorf("Expected blank required value to fail")
	}
	if !NewStringValidation("").WithRequired(false).Validate() {
		t.Errorf("Expected empty optional value to pass")
	}
	if NewStringValidation("x").WithMinLength(2).Validate() {
		t.Errorf("Expected short value to fail")
	}
}

func TestRanges(t *testing.T) {
	ten, neg := 10.5, -1
	if FloatRange(&ten, 0, 10) {
		t.Errorf("Expected 10.5 outside [0,10]")
	}
	if !FloatRange(nil, 0, 10) {
		t.Errorf("Expected nil to pass")
	}
	if NonNegative(&neg) {
		t.Errorf("Expected -1 to fail")
	}
	if !IsEmail("Student@College.EDU") {
		t.Errorf("Expected mixed-case email to pass")
	}
}
