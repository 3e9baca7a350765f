package validation

import (
	"strings"

	"github.com/BradenHooton/citywalk/pkg/auth"
)

const (
	MsgUsernameRequired = "Username is required"
	msgPasswordDigest   = "Password must be a valid SHA256 hash (64 characters)"

	msgCurrentPasswordDigest = "Current password must be a valid SHA256 hash (64 characters)"
	msgNewPasswordDigest     = "New password must be a valid SHA256 hash (64 characters)"
)

// Login validates a username/password-digest pair.
func Login(username, password string) Result {
	var c collector
	c.check(strings.TrimSpace(username) != "", MsgUsernameRequired)
	c.check(auth.IsDigest(password), msgPasswordDigest)
	return c.result()
}

// PasswordDigest validates a single password digest.
func PasswordDigest(password string) Result {
	var c collector
	c.check(auth.IsDigest(password), msgPasswordDigest)
	return c.result()
}

// PasswordChange validates both digests of a password change.
func PasswordChange(current, next string) Result {
	var c collector
	c.check(auth.IsDigest(current), msgCurrentPasswordDigest)
	c.check(auth.IsDigest(next), msgNewPasswordDigest)
	return c.result()
}
