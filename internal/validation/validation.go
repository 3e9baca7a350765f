// Package validation holds the field-level rules for every entity.
// Validators are pure: they never touch the store and report every
// failing rule, not just the first one.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/BradenHooton/citywalk/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

	validate = validator.New()
)

// Result is the outcome of validating one candidate record.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Err returns nil for a valid result and a *models.ValidationError otherwise.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return models.NewValidationError(r.Errors...)
}

type collector struct {
	errors []string
}

func (c *collector) check(ok bool, msg string) {
	if !ok {
		c.errors = append(c.errors, msg)
	}
}

func (c *collector) result() Result {
	return Result{IsValid: len(c.errors) == 0, Errors: c.errors}
}

func minTrimmed(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) >= n
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidDate accepts YYYY-MM-DD strings that name a real calendar day.
func IsValidDate(date string) bool {
	if !datePattern.MatchString(date) {
		return false
	}
	return validate.Var(date, "datetime=2006-01-02") == nil
}

// IsValidTime accepts 24h HH:MM strings.
func IsValidTime(t string) bool {
	return timePattern.MatchString(t)
}
