package validator

import (
	"strings"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		firstName string
		lastName  string
		password  string
		badFields []string
	}{
		{"valid", "alice@example.com", "Alice", "Adams", "Sup3rSecret", nil},
		{"empty email", "", "Alice", "Adams", "Sup3rSecret", []string{"email"}},
		{"bad email", "not-an-email", "Alice", "Adams", "Sup3rSecret", []string{"email"}},
		{"missing names", "alice@example.com", "", "  ", "Sup3rSecret", []string{"first_name", "last_name"}},
		{"short password", "alice@example.com", "Alice", "Adams", "Ab1", []string{"password"}},
		{"weak password", "alice@example.com", "Alice", "Adams", "alllowercase", []string{"password"}},
		{"everything wrong", "", "", "", "x", []string{"email", "first_name", "last_name", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegister(tt.email, tt.firstName, tt.lastName, tt.password)
			if len(errs) != len(tt.badFields) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(tt.badFields))
			}
			for _, field := range tt.badFields {
				if _, ok := errs[field]; !ok {
					t.Errorf("missing error for %q, got %v", field, errs)
				}
			}
		})
	}
}

func TestValidatePasswordMessageNamesMissingClasses(t *testing.T) {
	errs := ValidateRegister("alice@example.com", "Alice", "Adams", "alllowercase")
	msg := errs["password"]
	if !strings.Contains(msg, "uppercase") || !strings.Contains(msg, "number") {
		t.Errorf("password error %q should name the missing classes", msg)
	}
	if strings.Contains(msg, "lowercase") {
		t.Errorf("password error %q names a class that is present", msg)
	}
}

func TestValidateMessage(t *testing.T) {
	if errs := ValidateMessage("hello"); errs.HasErrors() {
		t.Errorf("valid message rejected: %v", errs)
	}
	if errs := ValidateMessage("   "); !errs.HasErrors() {
		t.Error("blank message accepted")
	}
	if errs := ValidateMessage(strings.Repeat("a", maxMessageLength+1)); !errs.HasErrors() {
		t.Error("oversized message accepted")
	}
	if errs := ValidateMessage(strings.Repeat("a", maxMessageLength)); errs.HasErrors() {
		t.Errorf("max-length message rejected: %v", errs)
	}
}
