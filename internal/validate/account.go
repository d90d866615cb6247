package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const MinPasswordLength = 8

const (
	FieldEmail    = "email"
	FieldName     = "name"
	FieldPassword = "password"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email checks that email looks like an address
func Email(email string) Errors {
	errs := Errors{}
	email = NormalizeEmail(email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Email is invalid"
	}
	return errs
}

// Password checks the minimum password length
func Password(password string) Errors {
	errs := Errors{}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs[FieldPassword] = "Password must be at least 8 characters"
	}
	return errs
}

// Registration validates a new account request. It returns nil when the
// input is acceptable.
func Registration(email, name, password string) error {
	errs := Email(email)
	if strings.TrimSpace(name) == "" {
		errs[FieldName] = "Name is required"
	}
	for f, msg := range Password(password) {
		errs[f] = msg
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
