package validation

import (
	"strings"

	"github.com/BradenHooton/citywalk/internal/models"
)

const (
	msgNameRequired = "Name is required and must be at least 2 characters long"
	msgEmailInvalid = "Email format is invalid"
)

// User validates a full user record.
func User(in models.UserInput) Result {
	var c collector
	c.check(minTrimmed(in.Name, 2), msgNameRequired)
	if in.Email != nil {
		c.check(validEmailField(*in.Email), msgEmailInvalid)
	}
	return c.result()
}

// UserUpdate validates only the fields present in the update.
func UserUpdate(u models.UserUpdate) Result {
	var c collector
	if u.Name != nil {
		c.check(minTrimmed(*u.Name, 2), msgNameRequired)
	}
	if u.Email != nil {
		c.check(validEmailField(*u.Email), msgEmailInvalid)
	}
	return c.result()
}

// An empty email means "no email" and is accepted.
func validEmailField(email string) bool {
	email = strings.TrimSpace(email)
	return email == "" || IsValidEmail(email)
}
