package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateRegister(email, firstName, lastName, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Names
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		errs.Add("first_name", "First name is required")
	} else if len(firstName) > 50 {
		errs.Add("first_name", "First name is too long")
	}

	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		errs.Add("last_name", "Last name is required")
	} else if len(lastName) > 50 {
		errs.Add("last_name", "Last name is too long")
	}

	// Password
	validatePassword(password, errs)

	return errs
}

const maxMessageLength = 4000

func ValidateMessage(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Message text is required")
	} else if len(text) > maxMessageLength {
		errs.Add("text", "Message is too long")
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
